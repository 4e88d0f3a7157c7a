package config

type DeviceConfig interface {
	GetGPSDAddr() string
	GetNotifyCommand() string
}

type Device struct{}

var _ DeviceConfig = Device{}

func (Device) GetGPSDAddr() string {
	return GetEnv("GPSD_ADDR", "127.0.0.1:2947")
}

func (Device) GetNotifyCommand() string {
	return GetEnv("NOTIFY_COMMAND", "notify-send")
}
