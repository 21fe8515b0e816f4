package service

import (
	"math/rand"
	"school_exam_backend/internal/model"
	"time"
)

// AttemptOrder is the snapshot fixed once per attempt: the question
// sequence and, for selectable questions, the option-key sequence.
type AttemptOrder struct {
	QuestionOrder []uint
	OptionOrder   map[uint][]string
}

// Randomizer produces per-attempt orderings. Each Shuffle call uses a
// fresh seed so two attempts never share an order; the rng factory is
// injectable for deterministic tests.
type Randomizer struct {
	newRNG func() *rand.Rand
}

func NewRandomizer() *Randomizer {
	return &Randomizer{
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

func NewSeededRandomizer(seed int64) *Randomizer {
	return &Randomizer{
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(seed))
		},
	}
}

// questionBlock is the shuffle unit: a standalone question, or a whole
// group. Groups move as one block and keep their internal order, so
// shuffling can never interleave a stimulus run.
type questionBlock struct {
	questions []model.Question
}

// Shuffle computes the attempt order for questions (given in authoring
// order). Group members are collapsed into a single block keyed by
// GroupID and ordered by GroupOrder; blocks are permuted only when
// randomizeQuestions is set. Option keys of selectable questions are
// independently permuted when randomizeAnswers is set; non-selectable
// types carry no option order.
func (r *Randomizer) Shuffle(questions []model.Question, randomizeQuestions, randomizeAnswers bool) (AttemptOrder, error) {
	rng := r.newRNG()

	var blocks []questionBlock
	groupIndex := make(map[uint]int)

	for _, q := range questions {
		if q.GroupID == nil {
			blocks = append(blocks, questionBlock{questions: []model.Question{q}})
			continue
		}
		gid := *q.GroupID
		idx, seen := groupIndex[gid]
		if !seen {
			groupIndex[gid] = len(blocks)
			blocks = append(blocks, questionBlock{questions: []model.Question{q}})
			continue
		}
		// Insert in GroupOrder position within the block.
		block := blocks[idx]
		pos := len(block.questions)
		for i, member := range block.questions {
			if q.GroupOrder < member.GroupOrder {
				pos = i
				break
			}
		}
		block.questions = append(block.questions, model.Question{})
		copy(block.questions[pos+1:], block.questions[pos:])
		block.questions[pos] = q
		blocks[idx] = block
	}

	if randomizeQuestions {
		rng.Shuffle(len(blocks), func(i, j int) {
			blocks[i], blocks[j] = blocks[j], blocks[i]
		})
	}

	order := AttemptOrder{
		OptionOrder: make(map[uint][]string),
	}
	for _, block := range blocks {
		for _, q := range block.questions {
			order.QuestionOrder = append(order.QuestionOrder, q.ID)

			if !q.Type.Selectable() {
				continue
			}
			opts, err := q.OptionList()
			if err != nil {
				return AttemptOrder{}, err
			}
			keys := make([]string, len(opts))
			for i, o := range opts {
				keys[i] = o.Key
			}
			if randomizeAnswers {
				rng.Shuffle(len(keys), func(i, j int) {
					keys[i], keys[j] = keys[j], keys[i]
				})
			}
			order.OptionOrder[q.ID] = keys
		}
	}

	return order, nil
}
