package domain

// Task is a task record chosen by the employee UI for a detail view.
// Its shape is owned by the backend and is not validated here.
type Task map[string]any
