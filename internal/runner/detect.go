package runner

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/model"
)

var makefileNames = []string{"Makefile", "makefile", "GNUmakefile"}

var justfileNames = []string{"justfile", "Justfile", ".justfile"}

// Detect probes dir for build backend evidence in the priority order from
// cfg.Defaults.RunnerPriority. Detected is the first backend with evidence;
// Available collects every backend with evidence. Detection is pure: it
// never runs a subprocess and never errors. Unknown priority entries are
// logged and skipped.
func Detect(dir string, cfg *config.Config) model.DetectionResult {
	if cfg == nil {
		cfg = config.Default()
	}

	var result model.DetectionResult
	for _, backend := range cfg.Defaults.RunnerPriority {
		switch backend {
		case "make":
			checkMakefile(dir, &result)
		case "just":
			checkJustfile(dir, &result)
		case "script":
			checkScripts(dir, cfg, &result)
		default:
			log.Debug().Str("backend", backend).Msg("unknown backend in runner priority, skipping")
		}
	}
	return result
}

func checkMakefile(dir string, result *model.DetectionResult) {
	name, ok := findMakefile(dir)
	if !ok {
		return
	}
	result.Evidence.MakefilePath = name
	kind := model.Make()
	result.Available = append(result.Available, kind)
	if result.Detected == nil {
		result.Detected = &kind
	}
}

func checkJustfile(dir string, result *model.DetectionResult) {
	name, ok := findJustfile(dir)
	if !ok {
		return
	}
	result.Evidence.JustfilePath = name
	kind := model.Just()
	result.Available = append(result.Available, kind)
	if result.Detected == nil {
		result.Detected = &kind
	}
}

func checkScripts(dir string, cfg *config.Config, result *model.DetectionResult) {
	for _, script := range cfg.Runners.Script.Scripts {
		name := strings.TrimPrefix(script, "./")
		if !isExecutableFile(filepath.Join(dir, name)) {
			continue
		}
		scriptPath := "./" + name
		result.Evidence.Scripts = append(result.Evidence.Scripts, scriptPath)
		kind := model.Script(scriptPath)
		result.Available = append(result.Available, kind)
		if result.Detected == nil {
			result.Detected = &kind
		}
	}
}

// isExecutableFile reports whether path is a regular file with the
// executable bit set. On Windows mere existence suffices.
func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

// findMakefile returns the makefile name present in dir, in lookup order.
func findMakefile(dir string) (string, bool) {
	return findFile(dir, makefileNames)
}

// findJustfile returns the justfile name present in dir, in lookup order.
func findJustfile(dir string) (string, bool) {
	return findFile(dir, justfileNames)
}

func findFile(dir string, names []string) (string, bool) {
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err == nil && info.Mode().IsRegular() {
			return name, true
		}
	}
	return "", false
}
