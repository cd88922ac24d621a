// SPDX-License-Identifier: MPL-2.0

package diskspace

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"syncbin-cli/internal/runner"
	"syncbin-cli/internal/testutil/fakerunner"
	"syncbin-cli/pkg/types"
)

func TestThresholds_Low(t *testing.T) {
	t.Parallel()

	plenty := Usage{Total: 100 * GiB, Available: 50 * GiB}
	tight := Usage{Total: 100 * GiB, Available: GiB / 2}
	smallDisk := Usage{Total: 10 * GiB, Available: 2 * GiB}

	tests := []struct {
		name string
		t    Thresholds
		u    Usage
		want bool
	}{
		{"no thresholds always reports", Thresholds{}, plenty, true},
		{"zsh plenty", ZshThresholds(), plenty, false},
		{"zsh below a gig", ZshThresholds(), tight, true},
		{"space only", Thresholds{MinSpace: 5 * GiB, HasSpace: true}, smallDisk, true},
		{"fraction only", Thresholds{MinFraction: 0.25, HasFraction: true}, smallDisk, true},
		{"fraction met", Thresholds{MinFraction: 0.1, HasFraction: true}, smallDisk, false},
		{"empty filesystem", Thresholds{MinFraction: 0.01, HasFraction: true}, Usage{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.t.Low(tt.u); got != tt.want {
				t.Errorf("Low(%+v) = %v, want %v", tt.u, got, tt.want)
			}
		})
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	u := Usage{Total: 1 << 40, Available: 1 << 31}

	tests := []struct {
		name     string
		t        Thresholds
		opts     ReportOptions
		wantOut  string
		wantCode types.ExitCode
	}{
		{"default", Thresholds{}, ReportOptions{}, "[disk: 2GB]\n", 0},
		{"bytes", Thresholds{}, ReportOptions{Bytes: true}, "2147483648\n", 0},
		{"verbose", Thresholds{}, ReportOptions{Verbose: true}, "Available disk space: 2GB\n2147483648 bytes\n0 percent\n", 0},
		{"quiet low", Thresholds{}, ReportOptions{Quiet: true}, "", 1},
		{"zsh enough", ZshThresholds(), ReportOptions{}, "", 0},
		{"quiet not low", ZshThresholds(), ReportOptions{Quiet: true}, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			code := Report(&out, u, tt.t, tt.opts)
			if out.String() != tt.wantOut {
				t.Errorf("output = %q, want %q", out.String(), tt.wantOut)
			}
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
		})
	}
}

func TestDFProber(t *testing.T) {
	t.Parallel()

	fake := fakerunner.New().On("df -kl /", fakerunner.Response{Stdout: "Filesystem 1024-blocks      Used Available Capacity  Mounted on\n" +
		"/dev/disk1s1  488245288 421339732  61622108    88%    /\n"})

	u, err := DFProber{Runner: fake}.Usage(context.Background(), "/")
	if err != nil {
		t.Fatalf("Usage() error: %v", err)
	}
	if want := (Usage{Total: 488245288 * KiB, Available: 61622108 * KiB}); u != want {
		t.Errorf("Usage() = %+v, want %+v", u, want)
	}
}

func TestDFProber_WrappedDevice(t *testing.T) {
	t.Parallel()

	out := "Filesystem     1K-blocks    Used Available Use% Mounted on\n" +
		"/dev/mapper/very-long-volume-group-name\n" +
		"               1000        400       600  40% /\n"
	u, err := parseDF(out)
	if err != nil {
		t.Fatalf("parseDF() error: %v", err)
	}
	if u.Total != 1000*KiB || u.Available != 600*KiB {
		t.Errorf("parseDF() = %+v", u)
	}
}

func TestDFProber_Errors(t *testing.T) {
	t.Parallel()

	fake := fakerunner.New().
		On("df -kl /missing", fakerunner.Response{Code: 1, Stderr: "df: /missing: No such file or directory"}).
		On("df -kl /garbage", fakerunner.Response{Stdout: "nonsense"})

	_, err := DFProber{Runner: fake}.Usage(context.Background(), "/missing")
	var exitErr *runner.ExitError
	if !errors.As(err, &exitErr) {
		t.Errorf("Usage(/missing) error = %v, want *runner.ExitError", err)
	}

	if _, err := (DFProber{Runner: fake}).Usage(context.Background(), "/garbage"); !errors.Is(err, errDFOutput) {
		t.Errorf("Usage(/garbage) error = %v, want errDFOutput", err)
	}
}

func TestNewProber_ReadsRoot(t *testing.T) {
	t.Parallel()

	u, err := NewProber(runner.New()).Usage(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Usage() error: %v", err)
	}
	if u.Total == 0 || u.Available > u.Total {
		t.Errorf("Usage() = %+v, want non-empty filesystem", u)
	}
}
