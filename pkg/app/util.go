package app

import (
	"github.com/nergy-se/tibbernobo/pkg/schedule"
	"github.com/sirupsen/logrus"
)

func logPrices(intervals []schedule.PriceInterval) {
	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	for _, in := range intervals {
		logrus.WithFields(logrus.Fields{
			"date":  in.StartsAt.Format("2006-01-02"),
			"time":  in.StartsAt.Format("15:04:05"),
			"total": in.Total.StringFixed(4),
			"level": in.Level,
		}).Debug("price")
	}
}
