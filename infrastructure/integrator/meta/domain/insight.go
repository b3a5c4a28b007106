package metadomain

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

type Action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// AdInsight é uma linha de /insights com level=ad e time_increment=1.
type AdInsight struct {
	AccountID   string   `json:"account_id"`
	CampaignID  string   `json:"campaign_id"`
	AdsetID     string   `json:"adset_id"`
	AdID        string   `json:"ad_id"`
	Objective   string   `json:"objective"`
	Impressions string   `json:"impressions"`
	Clicks      string   `json:"clicks"`
	Spend       string   `json:"spend"`
	Actions     []Action `json:"actions"`
	DateStart   string   `json:"date_start"`
	DateStop    string   `json:"date_stop"`
}

// Mapeamento de "objective" -> "action_type" que conta como resultado
var MetaObjectiveToActionType = map[string]string{
	"LINK_CLICKS":           "link_click",
	"POST_ENGAGEMENT":       "post_engagement",
	"PAGE_LIKES":            "like",
	"VIDEO_VIEWS":           "video_view",
	"LEAD_GENERATION":       "lead",
	"CONVERSIONS":           "offsite_conversion",
	"APP_INSTALLS":          "app_install",
	"PRODUCT_CATALOG_SALES": "offsite_conversion.fb_pixel_purchase",
	"MESSAGES":              "onsite_conversion.messaging_first_reply",
	"BRAND_AWARENESS":       "brand_awareness",
	"REACH":                 "reach",
	"STORE_TRAFFIC":         "store_visit",
	"EVENT_RESPONSES":       "rsvp",
	"ADD_TO_CART":           "offsite_conversion.fb_pixel_add_to_cart",
	"PURCHASE":              "offsite_conversion.fb_pixel_purchase",
	"OUTCOME_ENGAGEMENT":    "onsite_conversion.messaging_conversation_started_7d",
	"OUTCOME_LEADS":         "lead",
	"OUTCOME_SALES":         "offsite_conversion.fb_pixel_purchase",
	"OUTCOME_TRAFFIC":       "link_click",
}

// GetResult devolve o valor da ação que corresponde ao objetivo da campanha.
func (i *AdInsight) GetResult() float64 {
	actionType, ok := MetaObjectiveToActionType[i.Objective]
	if !ok {
		if i.Objective != "" {
			logrus.WithField("objective", i.Objective).Debug("meta: objective not mapped")
		}
		return 0
	}

	for _, action := range i.Actions {
		if action.ActionType != actionType {
			continue
		}

		value, err := strconv.ParseFloat(action.Value, 64)
		if err != nil {
			logrus.WithError(err).WithField("action_type", action.ActionType).Warn("meta: invalid action value")
			return 0
		}
		return value
	}

	return 0
}
