package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguages(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"戰鬥", []string{"zh-TW"}},
		{"전투", []string{"ko"}},
		{"битва", []string{"ru"}},
		{"combat", nil},
		{"", nil},
		{"1234", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Languages(tt.text), tt.text)
	}
}

func TestNonLatin(t *testing.T) {
	assert.True(t, NonLatin("荒野亂鬥 攻略"))
	assert.False(t, NonLatin("brawl stars guide"))
	assert.False(t, NonLatin(""))
}

func TestIs(t *testing.T) {
	assert.True(t, Is("戰鬥技巧", "Han"))
	assert.False(t, Is("combat", "Han"))
	assert.False(t, Is("戰鬥", ""))
}
