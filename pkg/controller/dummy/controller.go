package dummy

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Dummy logs week profiles instead of sending them to a hub.
type Dummy struct {
	profiles map[string][]string
	closed   bool
	sync.Mutex
}

func New() *Dummy {
	return &Dummy{
		profiles: make(map[string][]string),
	}
}

func (ts *Dummy) UpdateWeekProfile(ctx context.Context, id, name string, profile []string) error {
	logrus.WithFields(logrus.Fields{
		"id":   id,
		"name": name,
	}).Info("dummy: UpdateWeekProfile: ", strings.Join(profile, ","))
	ts.Lock()
	ts.profiles[id] = profile
	ts.Unlock()
	return nil
}

func (ts *Dummy) WeekProfile(id string) []string {
	ts.Lock()
	defer ts.Unlock()
	return ts.profiles[id]
}

func (ts *Dummy) Closed() bool {
	ts.Lock()
	defer ts.Unlock()
	return ts.closed
}

func (ts *Dummy) Close() error {
	ts.Lock()
	ts.closed = true
	ts.Unlock()
	return nil
}
