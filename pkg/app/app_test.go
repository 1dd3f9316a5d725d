package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nergy-se/tibbernobo/pkg/api/v1/config"
	"github.com/nergy-se/tibbernobo/pkg/mqtt"
	"github.com/nergy-se/tibbernobo/pkg/mqtt/mqtttest"
	"github.com/nergy-se/tibbernobo/pkg/nobo/nobotest"
	"github.com/nergy-se/tibbernobo/pkg/schedule"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrices struct {
	intervals []schedule.PriceInterval
	err       error
}

func (f *fakePrices) Tomorrow(ctx context.Context) ([]schedule.PriceInterval, error) {
	return f.intervals, f.err
}

func hourly(day time.Time, levels ...schedule.PriceLevel) []schedule.PriceInterval {
	var intervals []schedule.PriceInterval
	for i, l := range levels {
		intervals = append(intervals, schedule.PriceInterval{
			Total:    decimal.NewFromFloat(1.1),
			StartsAt: time.Date(day.Year(), day.Month(), day.Day(), i, 0, 0, 0, day.Location()),
			Level:    l,
		})
	}
	return intervals
}

func newTestApp(cfg *config.CliConfig, prices *fakePrices) *App {
	return &App{config: cfg, prices: prices}
}

func TestRunAtDummy(t *testing.T) {
	reference := time.Date(2024, 11, 13, 14, 0, 0, 0, time.UTC)
	a := newTestApp(&config.CliConfig{ControllerType: "dummy", WeekProfileID: "24"}, &fakePrices{
		intervals: hourly(reference.AddDate(0, 0, 1), schedule.LevelCheap, schedule.LevelNormal),
	})
	assert.NoError(t, a.RunAt(context.Background(), reference))
}

func TestRunAtPublishes(t *testing.T) {
	broker, err := mqtttest.New("nergy/#")
	require.NoError(t, err)
	defer broker.Close()

	reference := time.Date(2024, 11, 13, 14, 0, 0, 0, time.UTC) // wednesday
	a := newTestApp(&config.CliConfig{
		ControllerType:  "dummy",
		WeekProfileID:   "24",
		WeekProfileName: "tibber",
		MqttBroker:      broker.URL(),
		MqttTopic:       "nergy/tibbernobo/test",
	}, &fakePrices{
		intervals: hourly(reference.AddDate(0, 0, 1), schedule.LevelExpensive, schedule.LevelCheap),
	})
	require.NoError(t, a.RunAt(context.Background(), reference))

	WaitFor(t, time.Second, "published profile", func() bool {
		return len(broker.Messages()) == 1
	})
	msgs := broker.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "nergy/tibbernobo/test", msgs[0].Topic)

	payload := mqtt.Payload{}
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &payload))
	assert.Equal(t, "24", payload.ProfileID)
	assert.Equal(t, "2024-11-13", payload.ReferenceDate)
	assert.Equal(t, "2024-11-14", payload.PricedDay)
	assert.Equal(t, []string{"00000", "00000", "00000", "00002", "00000", "00000", "00000"}, payload.Profile)
	assert.Equal(t, 2, payload.Intervals)
}

func TestRunAtPublishFailureIgnored(t *testing.T) {
	reference := time.Date(2024, 11, 13, 14, 0, 0, 0, time.UTC)
	a := newTestApp(&config.CliConfig{
		ControllerType: "dummy",
		MqttBroker:     "tcp://127.0.0.1:1",
	}, &fakePrices{
		intervals: hourly(reference.AddDate(0, 0, 1), schedule.LevelCheap),
	})
	assert.NoError(t, a.RunAt(context.Background(), reference))
}

func TestRunAtNobo(t *testing.T) {
	hub, err := nobotest.New("102000012345")
	require.NoError(t, err)
	defer hub.Close()

	reference := time.Date(2024, 11, 17, 14, 0, 0, 0, time.UTC) // sunday
	a := newTestApp(&config.CliConfig{
		ControllerType:  "nobo",
		HubAddress:      hub.Addr(),
		HubSerial:       "102000012345",
		WeekProfileID:   "24",
		WeekProfileName: "tibber",
	}, &fakePrices{
		intervals: hourly(reference.AddDate(0, 0, 1), schedule.LevelVeryExpensive, schedule.LevelCheap),
	})

	err = a.RunAt(context.Background(), reference)
	require.NoError(t, err)

	profiles := hub.WeekProfiles()
	require.Len(t, profiles, 1)
	assert.Equal(t, []string{"00002", "00000", "00000", "00000", "00000", "00000", "00000"}, profiles[0].Profile)
}

func TestRunAtErrors(t *testing.T) {
	reference := time.Date(2024, 11, 13, 14, 0, 0, 0, time.UTC)
	fetchErr := errors.New("boom")

	a := newTestApp(&config.CliConfig{ControllerType: "dummy"}, &fakePrices{err: fetchErr})
	err := a.RunAt(context.Background(), reference)
	assert.ErrorIs(t, err, fetchErr)
	assert.ErrorContains(t, err, "error fetching prices")

	a = newTestApp(&config.CliConfig{ControllerType: "dummy"}, &fakePrices{})
	err = a.RunAt(context.Background(), reference)
	assert.ErrorIs(t, err, schedule.ErrEmptyInput)

	a = newTestApp(&config.CliConfig{ControllerType: "dummy"}, &fakePrices{
		intervals: hourly(reference, "UNKNOWN"),
	})
	err = a.RunAt(context.Background(), reference)
	var unmapped *schedule.UnmappedLevelError
	assert.ErrorAs(t, err, &unmapped)

	a = newTestApp(&config.CliConfig{ControllerType: "thermia"}, &fakePrices{
		intervals: hourly(reference, schedule.LevelCheap),
	})
	err = a.RunAt(context.Background(), reference)
	assert.ErrorContains(t, err, "unknown controller type")
}

func TestRunAtHubRefuses(t *testing.T) {
	hub, err := nobotest.New("102000012345")
	require.NoError(t, err)
	defer hub.Close()
	hub.SetErrorOnUpdate(true)

	reference := time.Date(2024, 11, 13, 14, 0, 0, 0, time.UTC)
	a := newTestApp(&config.CliConfig{
		ControllerType:  "nobo",
		HubAddress:      hub.Addr(),
		HubSerial:       "102000012345",
		WeekProfileID:   "24",
		WeekProfileName: "tibber",
	}, &fakePrices{
		intervals: hourly(reference, schedule.LevelCheap),
	})

	err = a.RunAt(context.Background(), reference)
	assert.ErrorContains(t, err, "error updating week profile 24")
	WaitFor(t, time.Second, "hub connection closed", func() bool {
		return hub.Connections() == 1
	})
}

func WaitFor(t *testing.T, timeout time.Duration, msg string, ok func() bool) {
	end := time.Now().Add(timeout)
	for {
		if end.Before(time.Now()) {
			t.Errorf("timeout waiting for: %s", msg)
			return
		}
		time.Sleep(10 * time.Millisecond)
		if ok() {
			return
		}
	}
}
