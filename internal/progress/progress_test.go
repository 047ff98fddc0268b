package progress

import (
	"context"
	"testing"
	"time"
)

func TestCreateTaskAndIncrement(t *testing.T) {
	tr, err := New("")
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	defer tr.Close()

	taskID, err := tr.CreateTask("group-1", string(TaskDBInsertAll), "JMdict", "2024", "term_bank", 3)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := tr.Increment(taskID, 1); err != nil {
		t.Fatalf("increment: %v", err)
	}
	task, ok, err := tr.Get(taskID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("expected task to exist")
	}
	if task.Current != 1 || task.Total != 3 {
		t.Fatalf("expected current=1 total=3, got %+v", task)
	}
	if task.SchemaName != "term_bank" {
		t.Fatalf("expected schema name term_bank, got %q", task.SchemaName)
	}
}

func TestIncrementUnknownTask(t *testing.T) {
	tr, err := New("")
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	defer tr.Close()

	if err := tr.Increment("does-not-exist", 1); err == nil {
		t.Fatalf("expected error incrementing an unknown task")
	}
}

func TestIsCompleteRequiresPositiveTotal(t *testing.T) {
	tr, err := New("")
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	defer tr.Close()

	taskID, err := tr.CreateTask("group-1", string(TaskCopyStaticAssets), "JMdict", "2024", "", 0)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	complete, err := tr.IsComplete(taskID)
	if err != nil {
		t.Fatalf("is complete: %v", err)
	}
	if complete {
		t.Fatalf("expected a zero-total task to never be complete")
	}
}

func TestIsCompleteWhenCurrentReachesTotal(t *testing.T) {
	tr, err := New("")
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	defer tr.Close()

	taskID, err := tr.CreateTask("group-1", string(TaskDBInsertAll), "JMdict", "2024", "term_bank", 2)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := tr.Increment(taskID, 2); err != nil {
		t.Fatalf("increment: %v", err)
	}
	complete, err := tr.IsComplete(taskID)
	if err != nil {
		t.Fatalf("is complete: %v", err)
	}
	if !complete {
		t.Fatalf("expected task to be complete once current reaches total")
	}
}

func TestWaitForCompletionReturnsOnceComplete(t *testing.T) {
	tr, err := New("")
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	defer tr.Close()

	taskID, err := tr.CreateTask("group-1", string(TaskDBInsertAll), "JMdict", "2024", "term_bank", 1)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = tr.Increment(taskID, 1)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done, err := tr.WaitForCompletion(ctx, taskID)
	if err != nil {
		t.Fatalf("wait for completion: %v", err)
	}
	if !done {
		t.Fatalf("expected completion before context deadline")
	}
}

func TestWaitForCompletionRespectsContextCancellation(t *testing.T) {
	tr, err := New("")
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	defer tr.Close()

	taskID, err := tr.CreateTask("group-1", string(TaskDBInsertAll), "JMdict", "2024", "term_bank", 1)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	done, err := tr.WaitForCompletion(ctx, taskID)
	if err != nil {
		t.Fatalf("wait for completion: %v", err)
	}
	if done {
		t.Fatalf("expected wait to time out since the task never completes")
	}
}

func TestGetAllReturnsEveryTask(t *testing.T) {
	tr, err := New("")
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	defer tr.Close()

	if _, err := tr.CreateTask("group-1", string(TaskLoadJSON), "A", "1", "term_bank", 1); err != nil {
		t.Fatalf("create task 1: %v", err)
	}
	if _, err := tr.CreateTask("group-1", string(TaskMergeJSON), "A", "1", "tag_bank", 1); err != nil {
		t.Fatalf("create task 2: %v", err)
	}

	tasks, err := tr.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
}

func TestNewClearsExistingTableOnConstruction(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/progress.db"

	tr1, err := New(path)
	if err != nil {
		t.Fatalf("new tracker 1: %v", err)
	}
	if _, err := tr1.CreateTask("group-1", string(TaskLoadJSON), "A", "1", "term_bank", 1); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := tr1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	tr2, err := New(path)
	if err != nil {
		t.Fatalf("new tracker 2: %v", err)
	}
	defer tr2.Close()

	tasks, err := tr2.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected reopening to clear stale tasks, got %d", len(tasks))
	}
}
