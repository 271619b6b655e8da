package displays

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eyedoro/internal/core/broadcast"
)

func TestArrangePutsPrimaryFirst(t *testing.T) {
	arranged := Arrange([]broadcast.Display{
		{ID: 0, X: 1920},
		{ID: 1, X: -1280},
		{ID: 2, X: 0, Primary: true},
	})
	ids := []int{arranged[0].ID, arranged[1].ID, arranged[2].ID}
	assert.Equal(t, []int{2, 1, 0}, ids)
}

func TestArrangePromotesFirstWithoutPrimary(t *testing.T) {
	input := []broadcast.Display{{ID: 0, X: 1920}, {ID: 1, X: 0}}
	arranged := Arrange(input)
	assert.Equal(t, 1, arranged[0].ID)
	assert.True(t, arranged[0].Primary)
	assert.False(t, input[1].Primary)
}

func TestArrangeEmpty(t *testing.T) {
	assert.Empty(t, Arrange(nil))
}
