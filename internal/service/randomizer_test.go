package service

import (
	"reflect"
	"testing"

	"school_exam_backend/internal/model"
)

func choiceQuestion(id uint, keys ...string) model.Question {
	q := model.Question{Type: model.SingleChoice, Points: 5}
	q.ID = id
	opts := make([]model.QuestionOption, len(keys))
	for i, k := range keys {
		opts[i] = model.QuestionOption{Key: k, Text: "option " + k}
	}
	if err := q.SetOptions(opts); err != nil {
		panic(err)
	}
	return q
}

func essayQuestion(id uint) model.Question {
	q := model.Question{Type: model.Essay, Points: 10}
	q.ID = id
	return q
}

func grouped(q model.Question, groupID uint, order int) model.Question {
	q.GroupID = &groupID
	q.GroupOrder = order
	return q
}

func TestShuffleKeepsGroupsContiguous(t *testing.T) {
	questions := []model.Question{
		choiceQuestion(1, "A", "B", "C"),
		grouped(choiceQuestion(2, "A", "B"), 7, 1),
		grouped(choiceQuestion(3, "A", "B"), 7, 2),
		grouped(choiceQuestion(4, "A", "B"), 7, 3),
		choiceQuestion(5, "A", "B", "C", "D"),
		grouped(essayQuestion(6), 9, 1),
		grouped(essayQuestion(7), 9, 2),
	}

	groupOf := map[uint]uint{2: 7, 3: 7, 4: 7, 6: 9, 7: 9}
	memberOrder := map[uint]int{2: 1, 3: 2, 4: 3, 6: 1, 7: 2}

	for seed := int64(0); seed < 50; seed++ {
		r := NewSeededRandomizer(seed)
		order, err := r.Shuffle(questions, true, true)
		if err != nil {
			t.Fatalf("Shuffle returned error: %v", err)
		}
		if len(order.QuestionOrder) != len(questions) {
			t.Fatalf("seed %d: expected %d questions, got %d", seed, len(questions), len(order.QuestionOrder))
		}

		// Members of the same group must appear as one contiguous run
		// in their GroupOrder sequence.
		lastGroup := uint(0)
		lastMember := 0
		seenGroups := map[uint]bool{}
		for _, id := range order.QuestionOrder {
			gid, inGroup := groupOf[id]
			if !inGroup {
				lastGroup = 0
				continue
			}
			if gid != lastGroup {
				if seenGroups[gid] {
					t.Fatalf("seed %d: group %d split across the order %v", seed, gid, order.QuestionOrder)
				}
				seenGroups[gid] = true
				lastGroup = gid
				lastMember = memberOrder[id]
				continue
			}
			if memberOrder[id] != lastMember+1 {
				t.Fatalf("seed %d: group %d members out of order in %v", seed, gid, order.QuestionOrder)
			}
			lastMember = memberOrder[id]
		}
	}
}

func TestShuffleIsDeterministicPerSeed(t *testing.T) {
	questions := []model.Question{
		choiceQuestion(1, "A", "B", "C"),
		choiceQuestion(2, "A", "B", "C", "D"),
		choiceQuestion(3, "A", "B"),
	}

	first, err := NewSeededRandomizer(42).Shuffle(questions, true, true)
	if err != nil {
		t.Fatalf("Shuffle returned error: %v", err)
	}
	second, err := NewSeededRandomizer(42).Shuffle(questions, true, true)
	if err != nil {
		t.Fatalf("Shuffle returned error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different orders:\n%v\n%v", first, second)
	}
}

func TestShuffleWithoutFlagsPreservesAuthoringOrder(t *testing.T) {
	questions := []model.Question{
		choiceQuestion(3, "A", "B"),
		choiceQuestion(1, "A", "B", "C"),
		essayQuestion(2),
	}

	order, err := NewSeededRandomizer(1).Shuffle(questions, false, false)
	if err != nil {
		t.Fatalf("Shuffle returned error: %v", err)
	}

	want := []uint{3, 1, 2}
	if !reflect.DeepEqual(order.QuestionOrder, want) {
		t.Errorf("expected authoring order %v, got %v", want, order.QuestionOrder)
	}
	if !reflect.DeepEqual(order.OptionOrder[1], []string{"A", "B", "C"}) {
		t.Errorf("expected original option order, got %v", order.OptionOrder[1])
	}
}

func TestShuffleOptionOrderOnlyForSelectable(t *testing.T) {
	questions := []model.Question{
		choiceQuestion(1, "A", "B", "C", "D"),
		essayQuestion(2),
	}

	order, err := NewSeededRandomizer(3).Shuffle(questions, false, true)
	if err != nil {
		t.Fatalf("Shuffle returned error: %v", err)
	}

	keys, ok := order.OptionOrder[1]
	if !ok {
		t.Fatal("selectable question has no option order")
	}
	if len(keys) != 4 {
		t.Errorf("expected 4 option keys, got %v", keys)
	}
	seen := map[string]bool{}
	for _, k := range keys {
		seen[k] = true
	}
	for _, k := range []string{"A", "B", "C", "D"} {
		if !seen[k] {
			t.Errorf("option key %s missing from shuffled order %v", k, keys)
		}
	}

	if _, ok := order.OptionOrder[2]; ok {
		t.Error("essay question should carry no option order")
	}
}
