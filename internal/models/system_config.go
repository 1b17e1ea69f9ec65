package models

import "time"

// SystemConfigID is the fixed document id of the configuration singleton
const SystemConfigID = "config"

// SystemConfig holds the lottery settings shared by the session and draw engines
type SystemConfig struct {
	ID                string    `bson:"_id" json:"id"`
	PayoutPercentage  float64   `bson:"payoutPercentage" json:"payoutPercentage" validate:"gt=0,lte=1"`
	FixedPayoutAmount float64   `bson:"fixedPayoutAmount" json:"fixedPayoutAmount" validate:"gte=0"`
	MinStake          float64   `bson:"minStake" json:"minStake" validate:"gt=0"`
	MaxStake          float64   `bson:"maxStake" json:"maxStake" validate:"gtefield=MinStake"`
	DrawIntervalHours int       `bson:"drawIntervalHours" json:"drawIntervalHours" validate:"gt=0"`
	NextDrawTime      time.Time `bson:"nextDrawTime" json:"nextDrawTime"`
	CurrentJackpot    float64   `bson:"currentJackpot" json:"currentJackpot" validate:"gte=0"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
	UpdatedBy         string    `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}

// SystemConfigUpdate carries an operator's partial change to SystemConfig.
// Nil fields are left untouched.
type SystemConfigUpdate struct {
	PayoutPercentage  *float64   `json:"payoutPercentage" validate:"omitempty,gt=0,lte=1"`
	FixedPayoutAmount *float64   `json:"fixedPayoutAmount" validate:"omitempty,gte=0"`
	MinStake          *float64   `json:"minStake" validate:"omitempty,gt=0"`
	MaxStake          *float64   `json:"maxStake" validate:"omitempty,gt=0"`
	DrawIntervalHours *int       `json:"drawIntervalHours" validate:"omitempty,gt=0"`
	NextDrawTime      *time.Time `json:"nextDrawTime"`
}

// Fields returns the bson field names and values that are set on the update
func (u SystemConfigUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.PayoutPercentage != nil {
		fields["payoutPercentage"] = *u.PayoutPercentage
	}
	if u.FixedPayoutAmount != nil {
		fields["fixedPayoutAmount"] = *u.FixedPayoutAmount
	}
	if u.MinStake != nil {
		fields["minStake"] = *u.MinStake
	}
	if u.MaxStake != nil {
		fields["maxStake"] = *u.MaxStake
	}
	if u.DrawIntervalHours != nil {
		fields["drawIntervalHours"] = *u.DrawIntervalHours
	}
	if u.NextDrawTime != nil {
		fields["nextDrawTime"] = *u.NextDrawTime
	}
	return fields
}
