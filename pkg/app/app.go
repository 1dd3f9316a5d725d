package app

import (
	"context"
	"fmt"
	"time"

	"github.com/nergy-se/tibbernobo/pkg/api/v1/config"
	"github.com/nergy-se/tibbernobo/pkg/api/v1/types"
	"github.com/nergy-se/tibbernobo/pkg/controller"
	"github.com/nergy-se/tibbernobo/pkg/controller/dummy"
	"github.com/nergy-se/tibbernobo/pkg/mqtt"
	"github.com/nergy-se/tibbernobo/pkg/nobo"
	"github.com/nergy-se/tibbernobo/pkg/schedule"
	"github.com/nergy-se/tibbernobo/pkg/tibber"
	"github.com/sirupsen/logrus"
)

type PriceSource interface {
	Tomorrow(ctx context.Context) ([]schedule.PriceInterval, error)
}

type App struct {
	config *config.CliConfig
	prices PriceSource
}

func New(config *config.CliConfig) *App {
	return &App{
		config: config,
		prices: tibber.New(config.TibberURL, config.Token(), config.TibberHomeID),
	}
}

// Run installs a week profile built from tomorrows prices.
func (a *App) Run(ctx context.Context) error {
	loc, err := a.config.Location()
	if err != nil {
		return err
	}
	return a.RunAt(ctx, time.Now().In(loc))
}

// RunAt runs the whole pipeline as if it was started at reference.
func (a *App) RunAt(ctx context.Context, reference time.Time) error {
	intervals, err := a.prices.Tomorrow(ctx)
	if err != nil {
		return fmt.Errorf("error fetching prices: %w", err)
	}
	logPrices(intervals)

	profile, err := schedule.Build(intervals, reference)
	if err != nil {
		return fmt.Errorf("error building week profile: %w", err)
	}
	before, after := schedule.DaysAround(reference)
	logrus.WithFields(logrus.Fields{
		"pricedDay":  schedule.PricedDay(reference).Format(time.DateOnly),
		"daysBefore": before,
		"daysAfter":  after,
	}).Infof("built week profile %s", profile)

	err = a.install(ctx, profile.Tokens())
	if err != nil {
		return err
	}

	a.publish(reference, profile, len(intervals))
	return nil
}

func (a *App) install(ctx context.Context, profile []string) error {
	ctrl, err := a.newController(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := ctrl.Close(); err != nil {
			logrus.Warnf("error closing hub connection: %s", err)
		}
	}()

	err = ctrl.UpdateWeekProfile(ctx, a.config.WeekProfileID, a.config.WeekProfileName, profile)
	if err != nil {
		return fmt.Errorf("error updating week profile %s: %w", a.config.WeekProfileID, err)
	}
	return nil
}

func (a *App) newController(ctx context.Context) (controller.Controller, error) {
	switch types.ControllerType(a.config.ControllerType) {
	case types.ControllerTypeDummy:
		return dummy.New(), nil
	case types.ControllerTypeNobo:
		addr, serial := a.config.HubAddress, a.config.HubSerial
		if addr == "" {
			hub, err := a.discover(ctx)
			if err != nil {
				return nil, err
			}
			addr, serial = hub.IP, hub.Serial
		}
		client, err := nobo.Dial(ctx, addr, serial)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown controller type %q", a.config.ControllerType)
}

func (a *App) discover(ctx context.Context) (nobo.Hub, error) {
	timeout, err := a.config.Discovery()
	if err != nil {
		return nobo.Hub{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logrus.Infof("discovering hub with serial %s", a.config.HubSerial)
	hub, err := nobo.Discover(ctx, a.config.DiscoveryAddress, a.config.HubSerial)
	if err != nil {
		return hub, fmt.Errorf("error discovering hub: %w", err)
	}
	return hub, nil
}

// publish is best effort, the hub already has the profile.
func (a *App) publish(reference time.Time, profile schedule.WeekProfile, intervals int) {
	if a.config.MqttBroker == "" {
		return
	}
	pub, err := mqtt.New(a.config.MqttBroker, a.config.MqttTopic)
	if err != nil {
		logrus.Warnf("error connecting to mqtt: %s", err)
		return
	}
	defer pub.Close()

	err = pub.Publish(mqtt.Payload{
		ProfileID:     a.config.WeekProfileID,
		Name:          a.config.WeekProfileName,
		ReferenceDate: reference.Format(time.DateOnly),
		PricedDay:     schedule.PricedDay(reference).Format(time.DateOnly),
		Profile:       profile.Tokens(),
		Intervals:     intervals,
		Time:          time.Now(),
	})
	if err != nil {
		logrus.Warnf("error publishing week profile: %s", err)
	}
}
