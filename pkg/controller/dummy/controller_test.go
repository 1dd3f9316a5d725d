package dummy

import (
	"context"
	"testing"

	"github.com/nergy-se/tibbernobo/pkg/controller"
	"github.com/stretchr/testify/assert"
)

var _ controller.Controller = &Dummy{}

func TestDummy(t *testing.T) {
	d := New()
	profile := []string{"00001", "00000", "00000", "00000", "00000", "00000", "00000"}

	assert.NoError(t, d.UpdateWeekProfile(context.Background(), "24", "tibber", profile))
	assert.Equal(t, profile, d.WeekProfile("24"))
	assert.Nil(t, d.WeekProfile("25"))

	assert.False(t, d.Closed())
	assert.NoError(t, d.Close())
	assert.True(t, d.Closed())
}
