package domain

import "testing"

// Трасса из сквозного сценария: [R,R,R,L,R]
func scenarioSequence() StepSequence {
	return StepSequence{DirRight, DirRight, DirRight, DirLeft, DirRight}
}

func TestStepClimbMatching(t *testing.T) {
	seq := scenarioSequence()

	// Этаж 0, смотрим вправо, seq[1]=R -> подъем
	res := Step(0, DirRight, ActionClimb, seq)
	if res.Outcome != OutcomeAdvanced {
		t.Fatalf("Expected OutcomeAdvanced, got %v", res.Outcome)
	}
	if res.NextFloor != 1 {
		t.Errorf("Expected floor 1, got %d", res.NextFloor)
	}

	// Этаж 1, seq[2]=R, все еще вправо -> этаж 2
	res = Step(1, DirRight, ActionClimb, seq)
	if res.Outcome != OutcomeAdvanced || res.NextFloor != 2 {
		t.Errorf("Expected advance to floor 2, got %+v", res)
	}
}

func TestStepTurnThenClimb(t *testing.T) {
	seq := scenarioSequence()

	// Этаж 2, seq[3]=L. Сначала поворот...
	res := Step(2, DirRight, ActionTurn, seq)
	if res.Outcome != OutcomeTurned {
		t.Fatalf("Expected OutcomeTurned, got %v", res.Outcome)
	}
	if res.NextFloor != 2 {
		t.Errorf("Turn must not change floor, got %d", res.NextFloor)
	}
	if res.NextFacing != DirLeft {
		t.Errorf("Expected facing LEFT after turn, got %v", res.NextFacing)
	}

	// ...и только потом подъем с новым направлением
	res = Step(2, res.NextFacing, ActionClimb, seq)
	if res.Outcome != OutcomeAdvanced || res.NextFloor != 3 {
		t.Errorf("Expected advance to floor 3, got %+v", res)
	}
}

func TestStepClimbMismatchFalls(t *testing.T) {
	// seq[1]=L, игрок смотрит вправо и лезет без поворота
	seq := StepSequence{DirLeft, DirLeft, DirRight}

	res := Step(0, DirRight, ActionClimb, seq)
	if res.Outcome != OutcomeFell {
		t.Fatalf("Expected OutcomeFell, got %v", res.Outcome)
	}
	// Финальный результат - текущий этаж
	if res.NextFloor != 0 {
		t.Errorf("Expected final floor 0, got %d", res.NextFloor)
	}
}

func TestStepPureFunction(t *testing.T) {
	seq := scenarioSequence()

	first := Step(1, DirRight, ActionClimb, seq)
	for i := 0; i < 10; i++ {
		again := Step(1, DirRight, ActionClimb, seq)
		if again != first {
			t.Fatalf("Step is not referentially transparent: %+v vs %+v", first, again)
		}
	}
}

func TestStepPastSequenceEnd(t *testing.T) {
	seq := StepSequence{DirRight, DirRight}

	res := Step(1, DirRight, ActionClimb, seq)
	if res.Outcome != OutcomeFell {
		t.Errorf("Climb past the generated sequence must fall, got %v", res.Outcome)
	}
}

func TestStepExhaustive(t *testing.T) {
	// Для каждой ступени проверяем обе ориентации: совпадение и промах
	seq := StepSequence{DirRight, DirRight, DirLeft, DirRight, DirLeft}

	for floor := 0; floor < len(seq)-1; floor++ {
		want := seq[floor+1]

		match := Step(floor, want, ActionClimb, seq)
		if match.Outcome != OutcomeAdvanced {
			t.Errorf("Floor %d facing %v: expected advance, got %v", floor, want, match.Outcome)
		}

		miss := Step(floor, want.Flip(), ActionClimb, seq)
		if miss.Outcome != OutcomeFell {
			t.Errorf("Floor %d facing %v: expected fall, got %v", floor, want.Flip(), miss.Outcome)
		}
	}
}
