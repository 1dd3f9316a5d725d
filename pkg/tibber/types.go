package tibber

import "github.com/nergy-se/tibbernobo/pkg/schedule"

const tomorrowQuery = `query Tomorrow($homeId: ID!) {
  viewer {
    home(id: $homeId) {
      currentSubscription {
        priceInfo {
          tomorrow {
            total
            startsAt
            level
          }
        }
      }
    }
  }
}`

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data struct {
		Viewer struct {
			Home *struct {
				CurrentSubscription *struct {
					PriceInfo *struct {
						Tomorrow []schedule.PriceInterval `json:"tomorrow"`
					} `json:"priceInfo"`
				} `json:"currentSubscription"`
			} `json:"home"`
		} `json:"viewer"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}
