// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/phayes/freeport"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Service runs a local driver binary such as chromedriver.
type Service struct {
	//The port the driver listens on. Default: a free port
	Port int
	//The URL path prefix to use for all incoming WebDriver REST requests. Default: ""
	BaseURL string
	//The path to use for the driver's own log. Default: "" (no -log-path switch)
	LogPath string
	// File receiving the driver stdout/stderr, rotated by size. If "" output is discarded. Default: ""
	OutputFile string
	// Start fails if the driver doesn't listen in less than StartTimeout. Default 20s.
	StartTimeout time.Duration
	// Args are extra switches passed to the driver.
	Args []string

	path   string
	logger *slog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	output io.WriteCloser
	url    string
}

// NewService returns a service for the driver binary at path.
func NewService(path string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = discardLogger()
	}
	return &Service{
		path:         path,
		logger:       logger,
		StartTimeout: 20 * time.Second,
	}
}

func (s *Service) switches() []string {
	switches := []string{"--port=" + strconv.Itoa(s.Port)}
	if s.LogPath != "" {
		switches = append(switches, "--log-path="+s.LogPath)
	}
	if s.BaseURL != "" {
		switches = append(switches, "--url-base="+s.BaseURL)
	}
	return append(switches, s.Args...)
}

// Start launches the driver and waits until its port accepts connections.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil {
		return errors.New("service start failed: driver already running")
	}
	if s.Port == 0 {
		port, err := freeport.GetFreePort()
		if err != nil {
			return fmt.Errorf("service start failed: %w", err)
		}
		s.Port = port
	}
	cmd := exec.Command(s.path, s.switches()...)
	var output io.WriteCloser
	if s.OutputFile != "" {
		output = &lumberjack.Logger{Filename: s.OutputFile, MaxSize: 10, MaxBackups: 3}
		cmd.Stdout = output
		cmd.Stderr = output
	}
	if err := cmd.Start(); err != nil {
		if output != nil {
			output.Close()
		}
		return fmt.Errorf("service start failed: %w", err)
	}
	s.cmd, s.output = cmd, output
	s.url = fmt.Sprintf("http://127.0.0.1:%d%s", s.Port, s.BaseURL)
	s.logger.Info("driver started", "path", s.path, "pid", cmd.Process.Pid, "port", s.Port)
	if err := probePort(ctx, s.Port, s.StartTimeout); err != nil {
		s.stopLocked()
		return fmt.Errorf("service start failed: %w", err)
	}
	return nil
}

// URL is the base URL of the running driver.
func (s *Service) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil {
		return errors.New("stop failed: driver not running")
	}
	return s.stopLocked()
}

func (s *Service) stopLocked() error {
	defer func() {
		s.cmd, s.output, s.url = nil, nil, ""
	}()
	if err := s.cmd.Process.Signal(os.Interrupt); err != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	s.logger.Info("driver stopped", "path", s.path)
	if s.output != nil {
		return s.output.Close()
	}
	return nil
}
