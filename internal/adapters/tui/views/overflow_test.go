package views

import (
	"reflect"
	"testing"

	"focuslist/internal/domain"
)

func TestOverflowResolve(t *testing.T) {
	d := domain.NewFocusData("2026-10-12")
	for _, id := range []string{"i1", "i2", "i3"} {
		d.AppendTask(domain.Task{ID: id, Title: id, Section: domain.SectionImmediate})
	}
	d.AppendTask(domain.Task{ID: "d1", Title: "d1", Section: domain.SectionThisWeek, DoDate: "2026-10-15"})
	repo := &memRepo{data: d}
	gate := &recordingGate{}
	svc := testServices(repo)
	svc.Gate = gate

	m := NewOverflowModel(svc)
	overflow := []domain.Task{d.Tasks.ThisWeek[0]}
	drain(t, m, m.Open(overflow))

	if !reflect.DeepEqual(gate.calls, []bool{false}) {
		t.Fatalf("gate calls = %v", gate.calls)
	}
	if len(m.immediate) != 3 {
		t.Fatalf("immediate = %d", len(m.immediate))
	}

	// first row is i1; mark it for demotion
	m.Update(keyPress("x"))
	promote, demote := m.Decision()
	if !reflect.DeepEqual(promote, []string{"d1"}) || !reflect.DeepEqual(demote, []string{"i1"}) {
		t.Fatalf("decision = %v / %v", promote, demote)
	}

	_, cmd := m.Update(keyPress("enter"))
	if _, ok := cmd().(SwitchToBoardMsg); !ok {
		t.Fatal("expected to return to the board")
	}

	saved := repo.snapshot()
	if _, task, _ := saved.FindTask("d1"); task.Section != domain.SectionImmediate {
		t.Errorf("d1 section = %s", task.Section)
	}
	if _, task, _ := saved.FindTask("i1"); task.Section != domain.SectionThisWeek {
		t.Errorf("i1 section = %s", task.Section)
	}
	if !reflect.DeepEqual(gate.calls, []bool{false, true}) {
		t.Errorf("gate calls = %v", gate.calls)
	}
}

func TestOverflowCancelReopensGate(t *testing.T) {
	repo := &memRepo{data: domain.NewFocusData("2026-10-12")}
	gate := &recordingGate{}
	svc := testServices(repo)
	svc.Gate = gate

	m := NewOverflowModel(svc)
	drain(t, m, m.Open([]domain.Task{{ID: "d1", Section: domain.SectionThisWeek}}))

	_, cmd := m.Update(keyPress("esc"))
	msg, ok := cmd().(SwitchToBoardMsg)
	if !ok || msg.Message == "" {
		t.Errorf("msg = %+v", msg)
	}
	if !reflect.DeepEqual(gate.calls, []bool{false, true}) {
		t.Errorf("gate calls = %v", gate.calls)
	}
}
