package contextcollector

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/ports"
)

const defaultOSReleasePath = "/etc/os-release"

// OSCollector implements ContextCollector with platform and distribution detection.
type OSCollector struct {
	goos          string
	osReleasePath string
	shell         string
}

// NewOSCollector inspects the running host. shell overrides $SHELL when set.
func NewOSCollector(shell string) *OSCollector {
	return &OSCollector{
		goos:          runtime.GOOS,
		osReleasePath: defaultOSReleasePath,
		shell:         shell,
	}
}

// Collect never fails hard: missing details are simply left empty.
func (c *OSCollector) Collect(ctx context.Context) (domain.OSContext, error) {
	osCtx := domain.OSContext{
		Platform: platformName(c.goos),
		Shell:    c.detectShell(),
	}
	switch c.goos {
	case "linux":
		osCtx.Distribution = c.linuxDistribution()
	case "darwin":
		if version := strings.TrimSpace(runCmd(ctx, "sw_vers", "-productVersion")); version != "" {
			osCtx.Distribution = "macOS " + version
		}
	}
	return osCtx, nil
}

func (c *OSCollector) linuxDistribution() string {
	data, err := os.ReadFile(c.osReleasePath)
	if err != nil {
		return ""
	}
	return parseOSRelease(string(data))
}

// parseOSRelease reads PRETTY_NAME, falling back to NAME and VERSION.
func parseOSRelease(content string) string {
	values, err := godotenv.Unmarshal(content)
	if err != nil {
		return ""
	}
	if pretty := values["PRETTY_NAME"]; pretty != "" {
		return pretty
	}
	return strings.TrimSpace(values["NAME"] + " " + values["VERSION"])
}

func platformName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	case "":
		return ""
	default:
		return strings.ToUpper(goos[:1]) + goos[1:]
	}
}

func (c *OSCollector) detectShell() string {
	shell := c.shell
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		return ""
	}
	return filepath.Base(shell)
}

func runCmd(ctx context.Context, name string, args ...string) string {
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	out, err := exec.CommandContext(cctx, name, args...).Output()
	if err != nil {
		return ""
	}
	return string(out)
}

var _ ports.ContextCollector = (*OSCollector)(nil)
