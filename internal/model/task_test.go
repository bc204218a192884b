package model

import "testing"

func TestAnnotateEmptyChecklist(t *testing.T) {
	task := Task{}
	task.Annotate()

	if task.ChecklistProgress != 0 {
		t.Errorf("progress = %d, want 0", task.ChecklistProgress)
	}
	if task.ChecklistTotal != 0 || task.ChecklistCompleted != 0 {
		t.Errorf("counts = %d/%d, want 0/0", task.ChecklistCompleted, task.ChecklistTotal)
	}
}

func TestAnnotateProgressRounding(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{"one of three", 1, 3, 33},
		{"two of three", 2, 3, 67},
		{"one of two", 1, 2, 50},
		{"all done", 4, 4, 100},
		{"none done", 0, 5, 0},
		{"one of six", 1, 6, 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{}
			for i := 0; i < tt.total; i++ {
				task.Checklist = append(task.Checklist, ChecklistItem{
					Completed: i < tt.completed,
				})
			}
			task.Annotate()

			if task.ChecklistProgress != tt.want {
				t.Errorf("progress = %d, want %d", task.ChecklistProgress, tt.want)
			}
			if task.ChecklistCompleted != tt.completed {
				t.Errorf("completed = %d, want %d", task.ChecklistCompleted, tt.completed)
			}
		})
	}
}
