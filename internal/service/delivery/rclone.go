package delivery

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/oshokin/qobuz-grabber/internal/config"
	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// CommandRunner runs an external program and returns its standard output.
type CommandRunner interface {
	// Run executes name with args and returns stdout.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs through os/exec.
type ExecRunner struct{}

// NewExecRunner creates a runner backed by os/exec.
func NewExecRunner() CommandRunner {
	return &ExecRunner{}
}

// Run executes name with args, streaming its output lines to the debug log.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debugf(ctx, "Running %s %s", name, strings.Join(args, " "))

	err := cmd.Run()

	logLines(ctx, name, stdout.Bytes())
	logLines(ctx, name, stderr.Bytes())

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, fmt.Errorf("%w: %s: %w: %s", ErrCommandFailed, name, err, lastLine(stderr.Bytes()))
	}

	return stdout.Bytes(), nil
}

// RCloneBackend copies deliveries to a remote with an external sync command.
type RCloneBackend struct {
	// runner executes the sync and link commands.
	runner CommandRunner
	// binary is used for link derivation.
	binary string
	// configPath is substituted for {config}.
	configPath string
	// destination is the remote root.
	destination string
	// template is the sync command template.
	template string
	// indexBaseURL builds the secondary link when set.
	indexBaseURL string
}

// NewRCloneBackend creates a RemoteSync backend.
func NewRCloneBackend(cfg *config.Config, runner CommandRunner) Backend {
	binary := cfg.RClone.Binary
	if binary == "" {
		binary = "rclone"
	}

	template := cfg.RClone.CommandTemplate
	if template == "" {
		template = config.DefaultRCloneCommandTemplate
	}

	return &RCloneBackend{
		runner:       runner,
		binary:       binary,
		configPath:   cfg.RClone.ConfigPath,
		destination:  cfg.RClone.Destination,
		template:     template,
		indexBaseURL: strings.TrimRight(cfg.RClone.IndexBaseURL, "/"),
	}
}

// Name identifies the backend in logs and errors.
func (b *RCloneBackend) Name() string {
	return "rclone"
}

// Deliver copies the source under destination/<path relative to the run> and derives links.
// A failed link lookup is logged and does not fail the delivery.
func (b *RCloneBackend) Deliver(ctx context.Context, req *Request) (*Result, error) {
	info, err := os.Stat(req.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceMissing, err)
	}

	rel := filepath.ToSlash(relativeToRun(req))

	target := joinRemote(b.destination, rel)
	if !info.IsDir() {
		target = joinRemote(b.destination, parentOf(rel))
	}

	args, err := BuildCommand(b.template, b.configPath, req.SourcePath, target)
	if err != nil {
		return nil, err
	}

	if _, err = b.runner.Run(ctx, args[0], args[1:]...); err != nil {
		return nil, err
	}

	logger.Infof(ctx, "Synced '%s' to %s", req.Title, target)

	result := &Result{}
	if req.DisableLink {
		return result, nil
	}

	remotePath := joinRemote(b.destination, rel)

	linkArgs := []string{"link"}
	if b.configPath != "" {
		linkArgs = append(linkArgs, "--config", b.configPath)
	}

	linkArgs = append(linkArgs, remotePath)

	output, err := b.runner.Run(ctx, b.binary, linkArgs...)
	if err != nil {
		logger.Warnf(ctx, "Failed to get a link for %s: %v", remotePath, err)
	} else {
		result.PrimaryLink = strings.TrimSpace(string(output))
	}

	if b.indexBaseURL != "" {
		result.SecondaryLink = b.indexBaseURL + "/" + escapeSegments(rel)
	}

	return result, nil
}

// BuildCommand splits the template into arguments and substitutes the placeholders.
// An empty config path drops "{config}" together with a preceding "--config".
func BuildCommand(template, configPath, source, destination string) ([]string, error) {
	fields := strings.Fields(template)
	if len(fields) == 0 {
		return nil, ErrEmptyCommandTemplate
	}

	args := make([]string, 0, len(fields))

	for _, field := range fields {
		if configPath == "" && field == "{config}" {
			if n := len(args); n > 0 && args[n-1] == "--config" {
				args = args[:n-1]
			}

			continue
		}

		field = strings.ReplaceAll(field, "{config}", configPath)
		field = strings.ReplaceAll(field, "{source}", source)
		field = strings.ReplaceAll(field, "{destination}", destination)
		args = append(args, field)
	}

	if len(args) == 0 {
		return nil, ErrEmptyCommandTemplate
	}

	return args, nil
}

// joinRemote appends a slash separated path to a remote root such as "remote:" or "remote:music".
func joinRemote(root, rel string) string {
	if rel == "" || rel == "." {
		return root
	}

	if strings.HasSuffix(root, ":") || strings.HasSuffix(root, "/") {
		return root + rel
	}

	return root + "/" + rel
}

// parentOf returns the parent of a slash separated path, or "" at the top.
func parentOf(rel string) string {
	i := strings.LastIndex(rel, "/")
	if i < 0 {
		return ""
	}

	return rel[:i]
}

// escapeSegments path-escapes every segment of a slash separated path.
func escapeSegments(rel string) string {
	segments := strings.Split(rel, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return strings.Join(segments, "/")
}

// logLines writes every non-empty output line to the debug log.
func logLines(ctx context.Context, name string, output []byte) {
	if !logger.IsDebugLevel() {
		return
	}

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			logger.Debugf(ctx, "[%s] %s", name, line)
		}
	}
}

// lastLine returns the last non-empty line of output.
func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")

	return strings.TrimSpace(lines[len(lines)-1])
}
