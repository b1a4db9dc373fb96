package gpssim

import "time"

// BackoffConfig — пауза после подряд идущих неудачных вызовов функции
// симуляции, чтобы не долбить лежащий бэкенд каждый тик.
type BackoffConfig struct {
	Step1 time.Duration // default: 5s
	Step2 time.Duration // default: 15s
	Step3 time.Duration // default: 60s
}

func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		Step1: 5 * time.Second,
		Step2: 15 * time.Second,
		Step3: 60 * time.Second,
	}
}

func (b BackoffConfig) normalized() BackoffConfig {
	def := DefaultBackoffConfig()
	if b.Step1 <= 0 {
		b.Step1 = def.Step1
	}
	if b.Step2 <= 0 {
		b.Step2 = def.Step2
	}
	if b.Step3 <= 0 {
		b.Step3 = def.Step3
	}
	return b
}

func (b BackoffConfig) Delay(failStreak int64) time.Duration {
	switch {
	case failStreak <= 1:
		return b.Step1
	case failStreak == 2:
		return b.Step2
	default:
		return b.Step3
	}
}
