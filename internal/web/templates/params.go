package templates

import (
	"strconv"

	"github.com/JonMunkholm/regioncompare/internal/core"
	"github.com/JonMunkholm/regioncompare/internal/dataset"
)

// PageTitle is the document title of the comparison page.
const PageTitle = "区域国家数据对比"

// CountryOption is one checkbox of the country list.
type CountryOption struct {
	Name     string
	Selected bool
}

// PageParams is everything the comparison page shows. Selected is the
// selection in insertion order across all regions.
type PageParams struct {
	Regions    []string
	Region     string
	Countries  []CountryOption
	AllChecked bool
	Selected   []string
	Indicators []core.Indicator
	Table      *core.TableModel
	Stale      []string
	Status     dataset.Status
	Error      *core.UserMessage
}

// nextState is the value a checkbox form posts to flip on.
func nextState(on bool) string {
	return strconv.FormatBool(!on)
}
