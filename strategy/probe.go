package strategy

import (
	"errors"
	"fmt"
)

// ErrProbeFailed means a candidate strategy did not answer its read-only
// capability probe and must not be trusted with capital.
var ErrProbeFailed = errors.New("capability probe failed")

// ProbeExposure verifies a candidate exposure strategy answers the read-only
// parts of its capability set before it is registered. Only reads — probing
// must never move capital.
func ProbeExposure(s ExposureStrategy) error {
	if s == nil {
		return fmt.Errorf("%w: nil strategy", ErrProbeFailed)
	}
	if s.Name() == "" {
		return fmt.Errorf("%w: empty name", ErrProbeFailed)
	}

	info, ok := TryInfo(s)
	if !ok {
		return fmt.Errorf("%w: exposure info unreadable", ErrProbeFailed)
	}
	if info.MaxCapacity < 0 || info.CurrentExposure < 0 {
		return fmt.Errorf("%w: negative capacity", ErrProbeFailed)
	}
	if info.RiskScore < 0 || info.RiskScore > 100 {
		return fmt.Errorf("%w: risk score %d out of range", ErrProbeFailed, info.RiskScore)
	}

	if _, ok := TryCosts(s); !ok {
		return fmt.Errorf("%w: cost breakdown unreadable", ErrProbeFailed)
	}
	return nil
}

// ProbeYield verifies a candidate yield strategy answers its read-only
// capability set.
func ProbeYield(y YieldStrategy) error {
	if y == nil {
		return fmt.Errorf("%w: nil strategy", ErrProbeFailed)
	}
	if y.Name() == "" {
		return fmt.Errorf("%w: empty name", ErrProbeFailed)
	}
	if res := TryTotalValue(y); !res.OK {
		return fmt.Errorf("%w: total value unreadable", ErrProbeFailed)
	}
	return nil
}
