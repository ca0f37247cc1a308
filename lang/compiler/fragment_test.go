package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func jmp(offset int) Code { return Code{Op: OpJump, Offset: offset} }

func TestPatchForwardJump(t *testing.T) {
	f1 := &fragment{
		code:           []Code{jmp(0), jmp(0), jmp(0)},
		forwardJumpPos: []int{0, 1, 2},
	}
	f2 := &fragment{
		code:           []Code{jmp(0), jmp(0), jmp(0)},
		forwardJumpPos: []int{0, 1, 2},
	}

	f1.patchForwardJump(3)
	f2.patchForwardJump(-2)

	assert.Equal(t, []Code{jmp(5), jmp(4), jmp(3)}, f1.code)
	assert.Equal(t, []Code{jmp(0), jmp(-1), jmp(-2)}, f2.code)
	assert.Empty(t, f1.forwardJumpPos)
	assert.Empty(t, f2.forwardJumpPos)
}

func TestPatchBackwardJump(t *testing.T) {
	f1 := &fragment{
		code:            []Code{jmp(0), jmp(0), jmp(0)},
		backwardJumpPos: []int{0, 1, 2},
	}
	f2 := &fragment{
		code:            []Code{jmp(0), jmp(0), jmp(0)},
		backwardJumpPos: []int{0, 1, 2},
	}

	f1.patchBackwardJump(-3)
	f2.patchBackwardJump(2)

	assert.Equal(t, []Code{jmp(-4), jmp(-5), jmp(-6)}, f1.code)
	assert.Equal(t, []Code{jmp(1), jmp(0), jmp(-1)}, f2.code)
	assert.Empty(t, f1.backwardJumpPos)
	assert.Empty(t, f2.backwardJumpPos)
}

func TestAppendFragment(t *testing.T) {
	f := &fragment{
		code:            []Code{jmp(0), {Op: OpLoadNil}, jmp(0)},
		backwardJumpPos: []int{2},
		forwardJumpPos:  []int{0},
	}
	f.appendFragment(&fragment{
		code:            []Code{jmp(0), {Op: OpUnloadTop}, jmp(0)},
		backwardJumpPos: []int{0},
		forwardJumpPos:  []int{2},
	})

	assert.Equal(t, []Code{
		jmp(0),                // 0: forward jump
		{Op: OpLoadNil},       // 1
		jmp(0),                // 2: backward jump
		jmp(0),                // 3: inner backward jump, now forward
		{Op: OpUnloadTop},     // 4
		jmp(0),                // 5: inner forward jump, now backward
	}, f.code)
	assert.Equal(t, []int{2, 5}, f.backwardJumpPos)
	assert.Equal(t, []int{0, 3}, f.forwardJumpPos)
}
