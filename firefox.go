// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FirefoxProfileDir builds a Firefox profile directory that is sent to the
// remote end inside the "firefox_profile" capability.
type FirefoxProfileDir struct {
	// Firefox preferences. Default: see method DefaultFirefoxPrefs
	Prefs map[string]any
	// Extensions are paths of .xpi files installed into the profile.
	Extensions []string
	// Base is an existing profile copied before prefs and extensions are
	// applied. Default: "" (empty profile)
	Base string
}

func NewFirefoxProfileDir() *FirefoxProfileDir {
	return &FirefoxProfileDir{Prefs: DefaultFirefoxPrefs()}
}

// Equivalent to setting the following firefox preferences to:
// "webdriver.log.file": path/jsconsole.log
// "webdriver.log.driver.file": path/driver.log
// "webdriver.log.profiler.file": path/profiler.log
// "webdriver.log.browser.file": path/browser.log
func (p *FirefoxProfileDir) SetLogPath(path string) {
	p.Prefs["webdriver.log.file"] = filepath.Join(path, "jsconsole.log")
	p.Prefs["webdriver.log.driver.file"] = filepath.Join(path, "driver.log")
	p.Prefs["webdriver.log.profiler.file"] = filepath.Join(path, "profiler.log")
	p.Prefs["webdriver.log.browser.file"] = filepath.Join(path, "browser.log")
}

// Populate a map with default firefox preferences
func DefaultFirefoxPrefs() map[string]any {
	prefs := map[string]any{
		// Disable cache
		"browser.cache.disk.enable":   false,
		"browser.cache.disk.capacity": 0,
		"browser.cache.memory.enable": true,
		//Allow extensions to be installed into the profile and still work
		"extensions.autoDisableScopes": 10,
		//Disable "do you want to remember this password?"
		"signon.rememberSignons": false,
		//set blank homepage, no welcome page
		"browser.startup.homepage":                 "about:blank",
		"browser.startup.page":                     0,
		"browser.startup.homepage_override.mstone": "ignore",
		"browser.offline":                          false,
		"browser.shell.checkDefaultBrowser":        false,
		//enable pop-ups
		"dom.disable_open_during_load": false,
		//disable dialog for long username/password in url
		"network.http.phishy-userpass-length": 255,
		"security.warn_entering_secure":       false,
		"security.warn_entering_weak":         false,
		"security.warn_leaving_secure":        false,
		"security.warn_submit_insecure":       false,
		"security.warn_viewing_mixed":         false,
		"toolkit.networkmanager.disable":      true,
		// Disable various autostuff
		"app.update.auto":                        false,
		"app.update.enabled":                     false,
		"extensions.update.enabled":              false,
		"browser.search.update":                  false,
		"extensions.blocklist.enabled":           false,
		"browser.safebrowsing.enabled":           false,
		"browser.sessionstore.resume_from_crash": false,
		"browser.tabs.warnOnClose":               false,
		"browser.tabs.warnOnOpen":                false,
		"prompts.tab_modal.enabled":              false,
		"toolkit.telemetry.prompted":             2,
		"toolkit.telemetry.enabled":              false,
		"toolkit.telemetry.rejected":             true,
		"dom.report_all_js_exceptions":           true,
		// Webdriver settings
		"webdriver_accept_untrusted_certs":     true,
		"webdriver_assume_untrusted_issuer":    true,
		"webdriver_enable_native_events":       false,
		"webdriver_unexpected_alert_behaviour": "dismiss",
	}
	return prefs
}

// Write creates the profile under dir, which must exist.
func (p *FirefoxProfileDir) Write(dir string) error {
	if p.Base != "" {
		if err := os.CopyFS(dir, os.DirFS(p.Base)); err != nil {
			return fmt.Errorf("create profile failed: %w", err)
		}
	}
	if len(p.Extensions) > 0 {
		extsPath := filepath.Join(dir, "extensions")
		if err := os.MkdirAll(extsPath, 0770); err != nil {
			return fmt.Errorf("create profile failed: %w", err)
		}
		for _, xpi := range p.Extensions {
			if err := installExtension(xpi, extsPath); err != nil {
				return err
			}
		}
	}
	return writeUserPrefs(filepath.Join(dir, "user.js"), p.Prefs)
}

// Encode writes the profile to a temporary directory and returns it
// zipped and base64 encoded.
func (p *FirefoxProfileDir) Encode() (string, error) {
	dir, err := os.MkdirTemp("", "webdriver")
	if err != nil {
		return "", fmt.Errorf("create profile failed: %w", err)
	}
	defer os.RemoveAll(dir)
	if err := p.Write(dir); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := zw.AddFS(os.DirFS(dir)); err != nil {
		return "", fmt.Errorf("zip profile failed: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("zip profile failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeUserPrefs(name string, prefs map[string]any) error {
	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString("user_pref(" + strconv.Quote(k) + ", ")
		switch x := prefs[k].(type) {
		case bool:
			sb.WriteString(strconv.FormatBool(x))
		case int:
			sb.WriteString(strconv.Itoa(x))
		case string:
			sb.WriteString(strconv.Quote(x))
		default:
			return fmt.Errorf("create profile failed: unexpected preference type %T: %s", x, k)
		}
		sb.WriteString(");\n")
	}
	return os.WriteFile(name, []byte(sb.String()), 0600)
}

type installRDF struct {
	Description struct {
		ID string `xml:"id"`
	}
}

// extensionID reads the id of an .xpi from install.rdf, falling back to
// the file name.
func extensionID(zr *zip.Reader, xpiPath string) (string, error) {
	for _, f := range zr.File {
		if f.Name != "install.rdf" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		rdf := installRDF{}
		if err := xml.Unmarshal(buf, &rdf); err != nil {
			return "", err
		}
		if rdf.Description.ID == "" {
			return "", errors.New("unable to find extension Id from install.rdf")
		}
		return rdf.Description.ID, nil
	}
	return strings.TrimSuffix(filepath.Base(xpiPath), filepath.Ext(xpiPath)), nil
}

func installExtension(xpiPath, extsPath string) error {
	zr, err := zip.OpenReader(xpiPath)
	if err != nil {
		return fmt.Errorf("install extension failed: %w", err)
	}
	defer zr.Close()
	id, err := extensionID(&zr.Reader, xpiPath)
	if err != nil {
		return fmt.Errorf("install extension failed: %w", err)
	}
	extPath := filepath.Join(extsPath, id)
	if err := os.Mkdir(extPath, 0770); err != nil {
		return fmt.Errorf("install extension failed: %w", err)
	}
	if err := os.CopyFS(extPath, fs.FS(zr)); err != nil {
		return fmt.Errorf("install extension failed: %w", err)
	}
	return nil
}
