package machine

import "fmt"

// entity is one scope slot: either an owned value or a value that has been
// promoted to a shared Cell because some closure captured it.
type entity struct {
	value  Value
	shared *Cell
}

func ownedEntity(v Value) entity { return entity{value: v} }
func sharedEntity(c *Cell) entity { return entity{shared: c} }

// scope is the flat slot array for one function invocation (or the
// top-level chunk). Runtime scoping has no nested block structure: the
// compiler's if/while/block bodies all allocate into the same slot run and
// emit a DropLocal to release them, so a scope is just a stack of entities
// addressed by integer LocalId.
type scope struct {
	entities []entity
}

func (s *scope) push(e entity) { s.entities = append(s.entities, e) }

func (s *scope) drop(count int) {
	if count > len(s.entities) {
		panic(fmt.Sprintf("machine: cannot drop %d locals, only %d in scope", count, len(s.entities)))
	}
	s.entities = s.entities[:len(s.entities)-count]
}

func (s *scope) get(id int) Value {
	e := s.at(id)
	if e.shared != nil {
		return e.shared.Get()
	}
	return e.value
}

func (s *scope) getRef(id int) *Cell {
	e := s.at(id)
	if e.shared != nil {
		return e.shared
	}
	c := NewCell(e.value)
	s.entities[id] = sharedEntity(c)
	return c
}

func (s *scope) edit(id int, v Value) {
	e := s.at(id)
	if e.shared != nil {
		e.shared.Set(v)
		return
	}
	s.entities[id] = ownedEntity(v)
}

func (s *scope) at(id int) entity {
	if id < 0 || id >= len(s.entities) {
		panic(fmt.Sprintf("machine: local id out of range: expected 0..%d, got %d", len(s.entities), id))
	}
	return s.entities[id]
}

// VariableTable is a stack of scopes, one per active call frame. Every
// operation addresses the topmost scope: a fresh frame pushes a scope on
// entry and pops it on return, so captured cells from enclosing frames are
// never reachable by LocalId, only by the Cell references a closure carries
// with it.
type VariableTable struct {
	scopes []*scope
}

// NewVariableTable returns a table with a single, empty top-level scope.
func NewVariableTable() *VariableTable {
	return &VariableTable{scopes: []*scope{{}}}
}

func (t *VariableTable) PushScope() {
	t.scopes = append(t.scopes, &scope{})
}

func (t *VariableTable) PopScope() {
	if len(t.scopes) == 0 {
		panic("machine: pop_scope called with no scope active")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

func (t *VariableTable) current() *scope {
	if len(t.scopes) == 0 {
		panic("machine: variable table operation with no scope active")
	}
	return t.scopes[len(t.scopes)-1]
}

// Push binds a new owned local in the current scope.
func (t *VariableTable) Push(v Value) { t.current().push(ownedEntity(v)) }

// PushRef binds a new local already backed by a shared cell, used when a
// call pushes a captured value into the callee's scope.
func (t *VariableTable) PushRef(c *Cell) { t.current().push(sharedEntity(c)) }

// Drop releases the top count locals of the current scope.
func (t *VariableTable) Drop(count int) { t.current().drop(count) }

// Get reads the local at id in the current scope.
func (t *VariableTable) Get(id int) Value { return t.current().get(id) }

// GetRef returns a shared Cell for the local at id, promoting it from an
// owned value if this is the first capture of that slot.
func (t *VariableTable) GetRef(id int) *Cell { return t.current().getRef(id) }

// Edit overwrites the local at id with v, writing through a Cell if the
// slot has been promoted.
func (t *VariableTable) Edit(id int, v Value) { t.current().edit(id, v) }
