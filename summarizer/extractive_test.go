package summarizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract_KeepsBestSentencesInOrder(t *testing.T) {
	req := require.New(t)
	text := "Go channels are great.\nChannels make go concurrency simple.\nI ate lunch."

	summary := Extract(text, 10)

	req.Equal("Go channels are great. Channels make go concurrency simple.", summary)
}

func TestExtract_EverythingFits(t *testing.T) {
	summary := Extract("The cat sat.\nDogs bark loudly.", 60)

	require.Equal(t, "The cat sat. Dogs bark loudly.", summary)
}

func TestExtract_TruncatesASingleLongSentence(t *testing.T) {
	summary := Extract("one two three four five", 3)

	require.Equal(t, "one two three", summary)
}

func TestExtract_Empty(t *testing.T) {
	require.Empty(t, Extract("", 10))
	require.Empty(t, Extract("something", 0))
}

func TestSplitSentences(t *testing.T) {
	req := require.New(t)

	sentences := splitSentences("First one. Second one!\nv1.2 is out? yes")

	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.text
		req.Equal(i, s.index)
	}
	req.Equal([]string{"First one.", "Second one!", "v1.2 is out?", "yes"}, texts)
}
