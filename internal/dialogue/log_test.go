package dialogue_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitlens/visitlens/internal/dialogue"
	"github.com/visitlens/visitlens/internal/domain"
)

func question(seq int, text string) dialogue.Message {
	return dialogue.Message{ID: uuid.New(), Kind: dialogue.KindQuestion, Seq: seq, Content: text}
}

func answer(seq int, text string) dialogue.Message {
	return dialogue.Message{ID: uuid.New(), Kind: dialogue.KindAnswer, Seq: seq, Content: text}
}

func classification(seq int) dialogue.Message {
	return dialogue.Message{
		ID:             uuid.New(),
		Kind:           dialogue.KindClassification,
		Seq:            seq,
		Classification: &domain.Classification{Interests: []string{"sports"}},
	}
}

func TestLog_AppendOrdering(t *testing.T) {
	t.Parallel()

	t.Run("sequence must be contiguous", func(t *testing.T) {
		t.Parallel()

		l := dialogue.NewLog()
		require.NoError(t, l.Append(question(0, "Q1")))

		err := l.Append(answer(2, "A"))
		assert.ErrorIs(t, err, dialogue.ErrInvariantViolation)
		assert.Equal(t, 1, l.Len(), "failed append must not change the log")
	})

	t.Run("sequence increases without gaps across kinds", func(t *testing.T) {
		t.Parallel()

		l := dialogue.NewLog()
		require.NoError(t, l.Append(question(0, "Q1")))
		_, ok := l.AnswerOpen()
		require.True(t, ok)
		require.NoError(t, l.Append(answer(1, "A1")))
		require.NoError(t, l.Append(question(2, "Q2")))

		msgs := l.Messages()
		for i, m := range msgs {
			assert.Equal(t, i, m.Seq)
		}
	})
}

func TestLog_SingleOpenQuestion(t *testing.T) {
	t.Parallel()

	l := dialogue.NewLog()
	require.NoError(t, l.Append(question(0, "Q1")))

	err := l.Append(question(1, "Q2"))
	assert.ErrorIs(t, err, dialogue.ErrInvariantViolation)

	id, ok := l.OpenQuestionID()
	require.True(t, ok)
	assert.Equal(t, l.Messages()[0].ID, id)
}

func TestLog_QuestionCannotArriveAnswered(t *testing.T) {
	t.Parallel()

	l := dialogue.NewLog()
	msg := question(0, "Q1")
	msg.Answered = true

	assert.ErrorIs(t, l.Append(msg), dialogue.ErrInvariantViolation)
}

func TestLog_AnswerOpenAndReopen(t *testing.T) {
	t.Parallel()

	l := dialogue.NewLog()
	require.NoError(t, l.Append(question(0, "Q1")))

	idx, ok := l.AnswerOpen()
	require.True(t, ok)
	assert.True(t, l.Messages()[idx].Answered)

	_, ok = l.OpenQuestionID()
	assert.False(t, ok, "no open question after AnswerOpen")

	require.NoError(t, l.Reopen(idx))
	assert.False(t, l.Messages()[idx].Answered)

	id, ok := l.OpenQuestionID()
	require.True(t, ok)
	assert.Equal(t, l.Messages()[idx].ID, id)
}

func TestLog_ReopenGuards(t *testing.T) {
	t.Parallel()

	l := dialogue.NewLog()
	require.NoError(t, l.Append(question(0, "Q1")))
	idx, _ := l.AnswerOpen()
	require.NoError(t, l.Append(answer(1, "A1")))

	t.Run("reopen of answer index fails", func(t *testing.T) {
		assert.ErrorIs(t, l.Reopen(1), dialogue.ErrInvariantViolation)
	})

	t.Run("reopen while another question open fails", func(t *testing.T) {
		require.NoError(t, l.Append(question(2, "Q2")))
		assert.ErrorIs(t, l.Reopen(idx), dialogue.ErrInvariantViolation)
	})
}

func TestLog_TerminalAfterClassification(t *testing.T) {
	t.Parallel()

	l := dialogue.NewLog()
	require.NoError(t, l.Append(question(0, "Q1")))
	_, ok := l.AnswerOpen()
	require.True(t, ok)
	require.NoError(t, l.Append(answer(1, "A1")))
	require.NoError(t, l.Append(classification(2)))

	assert.True(t, l.IsTerminal())
	assert.ErrorIs(t, l.Append(question(3, "Q2")), dialogue.ErrInvariantViolation)
	assert.ErrorIs(t, l.Append(answer(3, "A2")), dialogue.ErrInvariantViolation)
	assert.Equal(t, 3, l.Len())
}

func TestLog_MessagesReturnsCopy(t *testing.T) {
	t.Parallel()

	l := dialogue.NewLog()
	require.NoError(t, l.Append(question(0, "Q1")))

	msgs := l.Messages()
	msgs[0].Content = "mutated"

	assert.Equal(t, "Q1", l.Messages()[0].Content)
}
