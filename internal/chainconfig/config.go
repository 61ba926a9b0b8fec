package chainconfig

import (
	"fmt"
	"time"

	"github.com/wonny/rollover/internal/calendar"
	"github.com/wonny/rollover/internal/contracts"
	"github.com/wonny/rollover/internal/rollover"
)

const dateLayout = "2006-01-02"

// Config is one futures chain definition
type Config struct {
	Meta      Meta       `yaml:"meta" json:"meta"`
	Rollover  Rollover   `yaml:"rollover" json:"rollover"`
	Calendar  Calendar   `yaml:"calendar" json:"calendar"`
	Contracts []Contract `yaml:"contracts" json:"contracts" validate:"required,min=1,dive"`
}

// Meta identifies the chain and its analysis start
type Meta struct {
	ChainID     string `yaml:"chain_id" json:"chain_id" validate:"required,contract_code"`
	Root        string `yaml:"root" json:"root"` // instrument root, e.g. CL
	Description string `yaml:"description" json:"description"`
	StartDate   string `yaml:"start_date" json:"start_date" validate:"required,datetime=2006-01-02"`
}

// Rollover overrides the environment defaults; empty fields keep them
type Rollover struct {
	Window        *int   `yaml:"window" json:"window,omitempty" validate:"omitempty,gte=0,lte=250"`
	OrderPolicy   string `yaml:"order_policy" json:"order_policy,omitempty" validate:"omitempty,oneof=reject sort"`
	OverlapPolicy string `yaml:"overlap_policy" json:"overlap_policy,omitempty" validate:"omitempty,oneof=clamp reject last-write"`
}

// Calendar lists exchange holidays on top of weekends
type Calendar struct {
	Holidays []string `yaml:"holidays" json:"holidays,omitempty" validate:"dive,datetime=2006-01-02"`
}

// Contract is one listed contract and its expiry
type Contract struct {
	Code   string `yaml:"code" json:"code" validate:"required,contract_code"`
	Expiry string `yaml:"expiry" json:"expiry" validate:"required,datetime=2006-01-02"`
}

// Start returns the parsed start date
func (c *Config) Start() (time.Time, error) {
	d, err := time.Parse(dateLayout, c.Meta.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("meta.start_date: %w", err)
	}
	return d, nil
}

// Schedule converts the contract list to an expiry schedule in file order
func (c *Config) Schedule() (contracts.ExpirySchedule, error) {
	out := make(contracts.ExpirySchedule, 0, len(c.Contracts))
	for i, ct := range c.Contracts {
		d, err := time.Parse(dateLayout, ct.Expiry)
		if err != nil {
			return nil, fmt.Errorf("contracts[%d].expiry: %w", i, err)
		}
		out = append(out, contracts.Expiry{Contract: ct.Code, Date: d})
	}
	return out, nil
}

// Codes returns the contract codes in file order
func (c *Config) Codes() []string {
	out := make([]string, len(c.Contracts))
	for i, ct := range c.Contracts {
		out[i] = ct.Code
	}
	return out
}

// BusinessCalendar returns the weekday calendar, or a holiday calendar when
// holidays are listed
func (c *Config) BusinessCalendar() (calendar.BusinessCalendar, error) {
	if len(c.Calendar.Holidays) == 0 {
		return calendar.NewWeekday(), nil
	}
	days, err := calendar.ParseHolidays(c.Calendar.Holidays)
	if err != nil {
		return nil, err
	}
	return calendar.NewHoliday(days), nil
}

// Options overlays the chain's rollover settings on defaults
func (c *Config) Options(defaults rollover.Options) (rollover.Options, error) {
	opts := defaults
	if c.Rollover.Window != nil {
		opts.Window = *c.Rollover.Window
	}
	if c.Rollover.OrderPolicy != "" {
		p, err := rollover.ParseOrderPolicy(c.Rollover.OrderPolicy)
		if err != nil {
			return rollover.Options{}, err
		}
		opts.Order = p
	}
	if c.Rollover.OverlapPolicy != "" {
		p, err := rollover.ParseOverlapPolicy(c.Rollover.OverlapPolicy)
		if err != nil {
			return rollover.Options{}, err
		}
		opts.Overlap = p
	}
	return opts, nil
}
