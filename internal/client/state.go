package client

import "todolist/internal/models"

// State is the client's mirror of the server list, newest first. It only
// changes after the server confirms an operation.
type State struct {
	todos []models.Todo
}

type Stats struct {
	Total     int
	Completed int
	Pending   int
}

func NewState() *State {
	return &State{todos: []models.Todo{}}
}

// Load replaces the mirror with a full server listing.
func (s *State) Load(todos []models.Todo) {
	s.todos = append([]models.Todo{}, todos...)
}

// Add puts a newly created todo at the front.
func (s *State) Add(todo models.Todo) {
	s.todos = append([]models.Todo{todo}, s.todos...)
}

// Replace swaps in todo for the entry with the same id. It reports whether
// one was found.
func (s *State) Replace(todo models.Todo) bool {
	i := s.index(todo.ID)
	if i < 0 {
		return false
	}
	s.todos[i] = todo
	return true
}

func (s *State) Remove(id int64) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	return true
}

// Find returns the todo with the given id.
func (s *State) Find(id int64) (models.Todo, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Todo{}, false
	}
	return s.todos[i], true
}

func (s *State) Len() int {
	return len(s.todos)
}

func (s *State) At(i int) (models.Todo, bool) {
	if i < 0 || i >= len(s.todos) {
		return models.Todo{}, false
	}
	return s.todos[i], true
}

// Todos returns a copy of the mirror.
func (s *State) Todos() []models.Todo {
	return append([]models.Todo{}, s.todos...)
}

func (s *State) Stats() Stats {
	stats := Stats{Total: len(s.todos)}
	for _, todo := range s.todos {
		if todo.Completed {
			stats.Completed++
		}
	}
	stats.Pending = stats.Total - stats.Completed
	return stats
}

func (s *State) index(id int64) int {
	for i, todo := range s.todos {
		if todo.ID == id {
			return i
		}
	}
	return -1
}
