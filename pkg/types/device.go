package types

import "encoding/json"

// Platform is the operating system family of a registered device.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformWeb     Platform = "web"
)

func (p Platform) IsValid() bool {
	switch p {
	case PlatformAndroid, PlatformIOS, PlatformWeb:
		return true
	}
	return false
}

// DeviceRegistration describes a device that can receive push notifications.
// A device must be registered before push messages reach it.
type DeviceRegistration struct {
	DeviceID     string   `validate:"required"`
	Platform     Platform `validate:"required,oneof=android ios web"`
	FCMToken     string   `validate:"required"`
	Name         *string
	OSVersion    *string
	Model        *string
	APNToken     *string
	AppVersion   *string
	LastActiveAt *string
	Attributes   map[string]any
}

// ToMap returns the flattened device fields as sent to the CDP.
func (d *DeviceRegistration) ToMap() map[string]any {
	m := map[string]any{
		"deviceId": d.DeviceID,
		"platform": string(d.Platform),
		"fcmToken": d.FCMToken,
	}
	putString(m, "name", d.Name)
	putString(m, "osVersion", d.OSVersion)
	putString(m, "model", d.Model)
	putString(m, "apnToken", d.APNToken)
	putString(m, "appVersion", d.AppVersion)
	putString(m, "last_active_at", d.LastActiveAt)
	putData(m, "attributes", d.Attributes)
	return m
}

func (d *DeviceRegistration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToMap())
}
