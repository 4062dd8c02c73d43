// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package targetfs

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/northvault/zbackup/pkg/errors"
)

// RemoteConfig describes how to reach a target directory over SSH.
type RemoteConfig struct {
	Host             string
	Port             string
	User             string
	PrivateKey       string
	SSHOptions       map[string]string
	SkipHostKeyCheck bool
}

// allowedSSHOptions whitelists the "-o" options a caller may add on top of
// the fixed set buildSSHCommand always applies, matching the teacher's
// transport layer.
var allowedSSHOptions = map[string]bool{
	"AddressFamily":            true,
	"Compression":              true,
	"ConnectionAttempts":       true,
	"ConnectTimeout":           true,
	"TCPKeepAlive":             true,
	"ServerAliveInterval":      true,
	"ServerAliveCountMax":      true,
	"Ciphers":                  true,
	"MACs":                     true,
	"KexAlgorithms":            true,
	"PreferredAuthentications": true,
}

var dangerousShellChars = "&|><$`\\[]{}"

func validateSSHConfig(cfg RemoteConfig) error {
	if cfg.Host == "" {
		return errors.New(errors.CommandInvalidInput, "remote host is required")
	}
	if strings.ContainsAny(cfg.Host, dangerousShellChars) {
		return errors.New(errors.CommandInvalidInput, "remote host contains invalid characters")
	}
	if cfg.User != "" && strings.ContainsAny(cfg.User, dangerousShellChars) {
		return errors.New(errors.CommandInvalidInput, "remote user contains invalid characters")
	}
	if strings.Contains(cfg.PrivateKey, "..") {
		return errors.New(errors.CommandInvalidInput, "private key path must not contain '..'")
	}
	for k := range cfg.SSHOptions {
		if !allowedSSHOptions[k] {
			return errors.New(errors.CommandInvalidInput, "ssh option not allowed: "+k)
		}
	}
	return nil
}

// buildSSHCommand constructs the argv of an "ssh" invocation that reaches
// cfg, with a fixed baseline of batch-mode/keepalive options plus any
// whitelisted overrides.
func buildSSHCommand(cfg RemoteConfig) ([]string, error) {
	if err := validateSSHConfig(cfg); err != nil {
		return nil, err
	}

	args := []string{"ssh"}
	if cfg.Port != "" {
		args = append(args, "-p", cfg.Port)
	}
	if cfg.PrivateKey != "" {
		args = append(args, "-i", cfg.PrivateKey)
	}
	if cfg.SkipHostKeyCheck {
		args = append(args, "-o", "StrictHostKeyChecking=no")
	}
	args = append(args,
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=10",
		"-o", "ServerAliveInterval=10",
		"-o", "ServerAliveCountMax=3",
	)
	for k, v := range cfg.SSHOptions {
		args = append(args, "-o", k+"="+v)
	}

	host := cfg.Host
	if cfg.User != "" {
		host = cfg.User + "@" + cfg.Host
	}
	args = append(args, host)
	return args, nil
}

// RemoteTarget implements Target against a directory on a remote host,
// reached by shelling "ssh ... bash -c '<command>'" per invocation — no
// long-lived session is kept, matching §5's resource model.
type RemoteTarget struct {
	Root   string
	Config RemoteConfig
}

func NewRemoteTarget(root string, cfg RemoteConfig) *RemoteTarget {
	return &RemoteTarget{Root: root, Config: cfg}
}

func (t *RemoteTarget) run(ctx context.Context, remoteScript string) (string, error) {
	sshArgs, err := buildSSHCommand(t.Config)
	if err != nil {
		return "", err
	}
	full := append(append([]string{}, sshArgs...), remoteScript)

	cmd := exec.CommandContext(ctx, full[0], full[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", errors.NewCommandError(remoteScript, exitCodeOf(err), stderr.String())
	}
	return stdout.String(), nil
}

func exitCodeOf(err error) int {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

func (t *RemoteTarget) remotePath(path string) string {
	return t.Root + "/" + path
}

func (t *RemoteTarget) MkdirAll(ctx context.Context, path string) error {
	_, err := t.run(ctx, shellquote.Join("mkdir", "-p", t.remotePath(path)))
	return err
}

func (t *RemoteTarget) RemoveFile(ctx context.Context, path string) error {
	_, err := t.run(ctx, shellquote.Join("rm", "-f", t.remotePath(path)))
	return err
}

func (t *RemoteTarget) FileExists(ctx context.Context, path string) (bool, error) {
	_, err := t.run(ctx, shellquote.Join("test", "-f", t.remotePath(path)))
	return checkExists(err)
}

func (t *RemoteTarget) DirExists(ctx context.Context, path string) (bool, error) {
	_, err := t.run(ctx, shellquote.Join("test", "-d", t.remotePath(path)))
	return checkExists(err)
}

func checkExists(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if code, ok := errors.GetCode(err); ok && code == errors.CommandExecution {
		return false, nil
	}
	return false, err
}

func (t *RemoteTarget) ListDir(ctx context.Context, path string) ([]string, []string, error) {
	out, err := t.run(ctx, shellquote.Join("ls", "-1p", t.remotePath(path)))
	if err != nil {
		return nil, nil, err
	}
	var files, dirs []string
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, "/") {
			dirs = append(dirs, strings.TrimSuffix(line, "/"))
		} else {
			files = append(files, line)
		}
	}
	return files, dirs, nil
}

func (t *RemoteTarget) WriteSmallText(ctx context.Context, path, content string) error {
	remote := t.remotePath(path)
	// written via heredoc, not argv, to avoid command-line length limits
	script := shellquote.Join("mkdir", "-p", parentDir(remote)) +
		" && cat > " + shellquote.Join(remote) + " <<'ZBACKUP_EOF'\n" + content + "\nZBACKUP_EOF"
	_, err := t.run(ctx, script)
	return err
}

func (t *RemoteTarget) ReadSmallText(ctx context.Context, path string) (string, error) {
	return t.run(ctx, shellquote.Join("cat", t.remotePath(path)))
}

// pipeProcess wraps an in-flight ssh command's stdout so Close both closes
// the pipe and waits for the process, surfacing its exit status.
type pipeProcess struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (p *pipeProcess) Close() error {
	closeErr := p.ReadCloser.Close()
	waitErr := p.cmd.Wait()
	if waitErr != nil {
		return errors.NewCommandError(strings.Join(p.cmd.Args, " "), exitCodeOf(waitErr), "")
	}
	return closeErr
}

func (t *RemoteTarget) WriteStream(ctx context.Context, path string, r io.Reader) error {
	remote := t.remotePath(path)
	script := shellquote.Join("mkdir", "-p", parentDir(remote)) +
		" && cat > " + shellquote.Join(remote)

	sshArgs, err := buildSSHCommand(t.Config)
	if err != nil {
		return err
	}
	full := append(append([]string{}, sshArgs...), script)

	cmd := exec.CommandContext(ctx, full[0], full[1:]...)
	cmd.Stdin = r
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return errors.NewCommandError(script, exitCodeOf(err), stderr.String())
	}
	return nil
}

func (t *RemoteTarget) OpenReadStream(ctx context.Context, path string) (io.ReadCloser, error) {
	script := shellquote.Join("cat", t.remotePath(path))

	sshArgs, err := buildSSHCommand(t.Config)
	if err != nil {
		return nil, err
	}
	full := append(append([]string{}, sshArgs...), script)

	cmd := exec.CommandContext(ctx, full[0], full[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, errors.CommandExecution)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, errors.CommandExecution)
	}
	return &pipeProcess{ReadCloser: stdout, cmd: cmd}, nil
}

func (t *RemoteTarget) StreamDigest(ctx context.Context, path string) (string, error) {
	out, err := t.run(ctx, shellquote.Join("sha256sum", t.remotePath(path)))
	if err != nil {
		return "", err
	}
	return ParseDigestFile(out), nil
}

func parentDir(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return "."
}
