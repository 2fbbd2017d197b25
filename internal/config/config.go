package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned whenever a venue, timing, or format setting
// cannot be computed with. It is never corrected silently.
var ErrInvalidConfig = eris.New("invalid config")

// TimeWindow is a range of playable time within one day. An End earlier than
// Start means the window runs past midnight.
type TimeWindow struct {
	Start TimeOfDay `yaml:"start" json:"start"`
	End   TimeOfDay `yaml:"end" json:"end"`
}

// NormalizedEnd returns End, shifted forward a day when the window crosses midnight.
func (w TimeWindow) NormalizedEnd() TimeOfDay {
	if w.End < w.Start {
		return w.End + MinutesPerDay
	}
	return w.End
}

// DaySchedule lists the playable windows of one tournament day.
type DaySchedule struct {
	Day     int          `yaml:"day" json:"day"`
	Label   string       `yaml:"label" json:"label"`
	Windows []TimeWindow `yaml:"windows" json:"windows" validate:"dive"`
}

// MatchTiming describes how long one match occupies a field.
type MatchTiming struct {
	PartMinutes     int `yaml:"part_minutes" json:"part_minutes" validate:"gte=0"`
	Parts           int `yaml:"parts" json:"parts" validate:"min=1"`
	BreakMinutes    int `yaml:"break_minutes" json:"break_minutes" validate:"gte=0"`
	RotationMinutes int `yaml:"rotation_minutes" json:"rotation_minutes" validate:"gte=0"`
}

// Format is the competition format shared by every category at a venue.
type Format struct {
	GroupSize          int  `yaml:"group_size" json:"group_size" validate:"oneof=3 4"`
	DoubleRoundRobin   bool `yaml:"double_round_robin" json:"double_round_robin"`
	ConsolationBracket bool `yaml:"consolation_bracket" json:"consolation_bracket"`
	AvoidSameClub      bool `yaml:"avoid_same_club" json:"avoid_same_club"`
}

// Venue is a site with identical fields sharing one schedule and format.
type Venue struct {
	ID                string        `yaml:"id" json:"id" validate:"required"`
	Name              string        `yaml:"name" json:"name"`
	Fields            int           `yaml:"fields" json:"fields" validate:"min=1"`
	Schedule          []DaySchedule `yaml:"schedule" json:"schedule" validate:"dive"`
	Timing            MatchTiming   `yaml:"timing" json:"timing"`
	Format            Format        `yaml:"format" json:"format"`
	HostedCategoryIDs []string      `yaml:"hosted_categories" json:"hosted_categories"`
}

// Hosts reports whether the venue hosts the given category.
func (v *Venue) Hosts(categoryID string) bool {
	for _, id := range v.HostedCategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// Team is a registered team and the club it belongs to.
type Team struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	Club string `yaml:"club" json:"club"`
}

// Category is an age or skill bracket. Teams holds the confirmed roster in
// registration order; EnrolledTeams may stand in for it when only the count
// is known.
type Category struct {
	ID            string `yaml:"id" json:"id" validate:"required"`
	Name          string `yaml:"name" json:"name"`
	EnrolledTeams int    `yaml:"enrolled_teams" json:"enrolled_teams" validate:"gte=0"`
	Teams         []Team `yaml:"teams" json:"teams" validate:"dive"`
}

// EnrolledTeamCount returns the roster size, or EnrolledTeams without a roster.
func (c *Category) EnrolledTeamCount() int {
	if len(c.Teams) > 0 {
		return len(c.Teams)
	}
	return c.EnrolledTeams
}

// ArrivalConstraint says a group's teams cannot play before Earliest. A nil
// Day applies the constraint to every day.
type ArrivalConstraint struct {
	Category string    `yaml:"category" json:"category" validate:"required"`
	Group    string    `yaml:"group" json:"group" validate:"required"`
	Earliest TimeOfDay `yaml:"earliest" json:"earliest"`
	Day      *int      `yaml:"day" json:"day,omitempty"`
}

// Config is the whole plan file.
type Config struct {
	Venues             []Venue             `yaml:"venues" validate:"required,min=1,dive"`
	Categories         []Category          `yaml:"categories" validate:"dive"`
	ArrivalConstraints []ArrivalConstraint `yaml:"arrival_constraints" validate:"dive"`
}

// Venue returns the venue with the given id.
func (c *Config) Venue(id string) (*Venue, bool) {
	for i := range c.Venues {
		if c.Venues[i].ID == id {
			return &c.Venues[i], true
		}
	}
	return nil, false
}

// Category returns the category with the given id.
func (c *Config) Category(id string) (*Category, bool) {
	for i := range c.Categories {
		if c.Categories[i].ID == id {
			return &c.Categories[i], true
		}
	}
	return nil, false
}

// HostedCategories returns the categories hosted at v, in config order.
func (c *Config) HostedCategories(v *Venue) []Category {
	var hosted []Category
	for _, cat := range c.Categories {
		if v.Hosts(cat.ID) {
			hosted = append(hosted, cat)
		}
	}
	return hosted
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, eris.Wrap(err, "parsing config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "reading config file")
	}
	return LoadFromBytes(data)
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (c *Config) validate() error {
	if err := structValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return eris.Wrapf(ErrInvalidConfig, "%s: value %v fails %q",
				strings.TrimPrefix(fe.Namespace(), "Config."), fe.Value(), describeTag(fe))
		}
		return eris.Wrap(ErrInvalidConfig, err.Error())
	}

	venues := make(map[string]bool)
	for _, v := range c.Venues {
		if venues[v.ID] {
			return eris.Wrapf(ErrInvalidConfig, "venue %q is defined twice", v.ID)
		}
		venues[v.ID] = true

		days := make(map[int]bool)
		for _, day := range v.Schedule {
			if days[day.Day] {
				return eris.Wrapf(ErrInvalidConfig, "venue %q: day %d is scheduled twice", v.ID, day.Day)
			}
			days[day.Day] = true
			for _, w := range day.Windows {
				if w.NormalizedEnd() <= w.Start {
					return eris.Wrapf(ErrInvalidConfig, "venue %q day %d: window %s-%s is empty", v.ID, day.Day, w.Start, w.End)
				}
			}
		}
	}

	categories := make(map[string]bool)
	for _, cat := range c.Categories {
		if categories[cat.ID] {
			return eris.Wrapf(ErrInvalidConfig, "category %q is defined twice", cat.ID)
		}
		categories[cat.ID] = true

		if len(cat.Teams) > 0 && cat.EnrolledTeams != 0 && cat.EnrolledTeams != len(cat.Teams) {
			return eris.Wrapf(ErrInvalidConfig, "category %q: enrolled_teams is %d but %d teams are listed",
				cat.ID, cat.EnrolledTeams, len(cat.Teams))
		}

		seen := make(map[string]bool)
		for _, t := range cat.Teams {
			if seen[t.Name] {
				return eris.Wrapf(ErrInvalidConfig, "category %q: team %q is listed twice", cat.ID, t.Name)
			}
			seen[t.Name] = true
		}
	}

	for _, v := range c.Venues {
		for _, id := range v.HostedCategoryIDs {
			if !categories[id] {
				return eris.Wrapf(ErrInvalidConfig, "venue %q hosts unknown category %q", v.ID, id)
			}
		}
	}

	for _, ac := range c.ArrivalConstraints {
		if !categories[ac.Category] {
			return eris.Wrapf(ErrInvalidConfig, "arrival constraint for group %q references unknown category %q", ac.Group, ac.Category)
		}
	}

	return nil
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
}
