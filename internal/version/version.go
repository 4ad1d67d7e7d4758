package version

import (
	"fmt"
	"runtime"
	"time"
)

// Заполняются линкером через -ldflags "-X ...".
var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
	BuildBranch string
)

// Эпоха проекта: билды нумеруются днями от нее.
var buildEpoch = time.Date(
	2025, time.June, 10,
	0, 0, 0, 0,
	time.UTC,
)

// BuildInfo описывает метаданные сборки в структурном виде.
type BuildInfo struct {
	BuildID    int    `json:"buildId"`
	BuildDate  string `json:"buildDate"`
	Commit     string `json:"commit"`
	Branch     string `json:"branch"`
	GoVersion  string `json:"goVersion"`
	Calculated bool   `json:"calculated"`
	Error      string `json:"error,omitempty"`
}

// CalculateBuildID возвращает номер билда как число дней от эпохи проекта.
func CalculateBuildID() (int, error) {
	if BuildDate == "" {
		return 0, fmt.Errorf("BuildDate is empty")
	}

	t, err := time.ParseInLocation("2006-01-02", BuildDate, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid BuildDate %q: %w", BuildDate, err)
	}

	if t.Before(buildEpoch) {
		return 0, fmt.Errorf("BuildDate %s is before project epoch", BuildDate)
	}

	// Часы вместо дней, чтобы не спотыкаться о переводы времени
	days := int(t.Sub(buildEpoch).Hours() / 24)
	return days, nil
}

// Info возвращает метаданные сборки. Безопасна в любой момент.
func Info() BuildInfo {
	id, err := CalculateBuildID()

	info := BuildInfo{
		BuildDate: BuildDate,
		Commit:    BuildCommit,
		Branch:    BuildBranch,
		GoVersion: runtime.Version(),
	}

	if err != nil {
		info.Error = err.Error()
		return info
	}

	info.BuildID = id
	info.Calculated = true
	return info
}

// String возвращает человекочитаемую строку сборки.
func String() string {
	info := Info()

	if !info.Calculated {
		return fmt.Sprintf("Build unknown (%s)", info.Error)
	}

	return fmt.Sprintf(
		"Build %d (%s) commit[%s] branch[%s] %s",
		info.BuildID,
		info.BuildDate,
		coalesce(info.Commit, "unknown"),
		coalesce(info.Branch, "unknown"),
		info.GoVersion,
	)
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
