package models

// List is a named collection of tasks owned by exactly one user.
type List struct {
	ID      string `json:"_id"`
	Title   string `json:"title"`
	OwnerID string `json:"_userId"`
}

// ListPatch carries the mutable fields of a List. Nil fields are left unchanged.
type ListPatch struct {
	Title *string `json:"title"`
}

// Empty reports whether the patch changes nothing.
func (p ListPatch) Empty() bool {
	return p.Title == nil
}

// Task is a single item inside a List.
type Task struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	ListID    string `json:"_listId"`
	Completed bool   `json:"completed"`
}

// TaskPatch carries the mutable fields of a Task. Nil fields are left unchanged.
type TaskPatch struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Completed == nil
}
