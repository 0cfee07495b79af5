package batch

import (
	"errors"
	"fmt"
	"path"
)

// ForcingConfig describes a set of daily forcing files laid out as
// <Root>/WY<year>/<Dataset>.<Variable>.<day>.pfb, days numbered from 001.
type ForcingConfig struct {
	Root       string
	Dataset    string
	WaterYears []int
	Variables  []string
	Days       int
}

// DefaultForcingConfig returns the CONUS2 NLDAS3 daily plan: four water
// years, five variables, 90 days.
func DefaultForcingConfig() ForcingConfig {
	return ForcingConfig{
		Root:       "forcing/processed_data/CONUS2/NLDAS3/daily",
		Dataset:    "NLDAS",
		WaterYears: []int{2001, 2002, 2003, 2004},
		Variables: []string{
			"Temp.daily.mean",
			"Temp.daily.min",
			"Temp.daily.max",
			"APCP.daily.sum",
			"DSWR.daily.mean",
		},
		Days: 90,
	}
}

// Validate checks that the plan names at least one file.
func (c ForcingConfig) Validate() error {
	if c.Dataset == "" {
		return errors.New("batch: dataset is required")
	}
	if len(c.WaterYears) == 0 || len(c.Variables) == 0 || c.Days <= 0 {
		return fmt.Errorf("batch: empty forcing plan (%d years, %d variables, %d days)",
			len(c.WaterYears), len(c.Variables), c.Days)
	}
	return nil
}

// ForcingNames expands c into file names, ordered by water year, then
// variable, then day.
func ForcingNames(c ForcingConfig) []string {
	out := make([]string, 0, len(c.WaterYears)*len(c.Variables)*max(c.Days, 0))
	for _, wy := range c.WaterYears {
		dir := path.Join(c.Root, fmt.Sprintf("WY%d", wy))
		for _, v := range c.Variables {
			for day := 1; day <= c.Days; day++ {
				out = append(out, path.Join(dir, fmt.Sprintf("%s.%s.%03d.pfb", c.Dataset, v, day)))
			}
		}
	}
	return out
}
