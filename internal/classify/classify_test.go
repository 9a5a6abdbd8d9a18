package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain", "Picture-in-Picture", "Picture-in-Picture"},
		{"nbsp and runs", "A\u00a0\u00a0 B  C ", "A B C"},
		{"tabs and newlines", "\tMeet -\n Standup\r\n", "Meet - Standup"},
		{"only whitespace", " \u00a0\t ", ""},
		{"unicode space", "Foo\u2003Bar\ufeff", "Foo Bar"},
		{"next line", "\u0085Foo\u0085\u0085Bar\u0085", "Foo Bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
		})
	}
}

func TestStaticRules(t *testing.T) {
	tests := []struct {
		title    string
		expected bool
	}{
		{"Picture-in-Picture", true},
		{"Picture in picture", true},
		{"Picture-in-picture", true},
		{"Mode PIP (Picture-in-Picture)", true},
		{"PIP mode (Picture-in-Picture)", true},
		{"picture-in-picture", false},
		{"My Picture-in-Picture Tool", false},
		{"Some video - PiP", true},
		{"Some video - PIP", false},
		{"Meet - Design Review", true},
		{"Meet – Design Review", true},
		{"Meet—Design Review", true},
		{"Meet - Design Review - Google Chrome", false},
		{"Meet - Design Review - Chromium", false},
		{"Meet - Design Review — Mozilla Firefox", false},
		{"Meet - Design Review - Brave Web Browser", false},
		{"Google Meet - Design Review", false},
		{"TelegramDesktop", true},
		{"Telegram", false},
		{"Lofi beats - YouTube", true},
		{"YouTube", false},
		{"CollectorMainWindow", true},
		{"KASASA overlay", true},
		{"my-Kasasa-app", true},
		{"Terminal", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.title, nil))
		})
	}
}

func TestClassify_EmptyTitle(t *testing.T) {
	assert.False(t, Classify("", NewExactTitles("")))
	assert.Equal(t, Verdict{}, Evaluate("", nil))
}

func TestClassify_NormalizesBeforeMatching(t *testing.T) {
	titles := []string{
		"Picture-in-Picture",
		"  Picture-in-Picture  ",
		"Picture\u00a0in picture",
		"Meet\u00a0-\u00a0Standup",
		"Video  -  PiP",
		"Video\t- YouTube ",
		"Terminal",
		"   ",
	}

	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			assert.Equal(t, Classify(Normalize(title), nil), Classify(title, nil))
		})
	}
}

func TestClassify_ExactSet(t *testing.T) {
	exact := NewExactTitles("Foo Bar", "  Floating\u00a0Player ")

	assert.True(t, Classify("Foo Bar", exact))
	assert.True(t, Classify("Foo   Bar", exact))
	assert.True(t, Classify("Floating Player", exact))
	assert.False(t, Classify("foo bar", exact), "exact matching is case-sensitive")
	assert.False(t, Classify("Foo Bar Baz", exact))
}

func TestEvaluate(t *testing.T) {
	exact := NewExactTitles("Picture-in-Picture", "Floating Player")

	v := Evaluate(" Picture-in-Picture ", exact)
	assert.Equal(t, "Picture-in-Picture", v.Normalized)
	assert.True(t, v.Static)
	assert.True(t, v.Exact)
	assert.True(t, v.Pip())

	v = Evaluate("Floating  Player", exact)
	assert.False(t, v.Static)
	assert.True(t, v.Exact)
	assert.True(t, v.Pip())

	v = Evaluate("Editor", exact)
	assert.Equal(t, "Editor", v.Normalized)
	assert.False(t, v.Pip())
}
