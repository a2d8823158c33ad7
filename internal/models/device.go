package models

// Device is an owned appliance wired to a sensor.
type Device struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	OwnerUserID int64   `db:"owner_user_id" json:"owner_user_id"`
	GroupID     *int64  `db:"group_id" json:"group_id,omitempty"`
	GroupName   *string `db:"group_name" json:"group_name,omitempty"`
	SensorID    int64   `db:"sensor_id" json:"sensor_id"`
	TypeID      int64   `db:"type_id" json:"type_id"`
}

// DeviceType carries the rated power bounds used for provisioning alerts
// and default thresholds.
type DeviceType struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	MinPowerW float64 `db:"min_power_w" json:"min_power_w"`
	MaxPowerW float64 `db:"max_power_w" json:"max_power_w"`
}
