package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Faultbox/boneblend/internal/assets"
	"github.com/Faultbox/boneblend/internal/config"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Rig.Bones = 3
	cfg.Rig.Keyframes = 11
	cfg.Simulation.Instances = 4
	cfg.Simulation.Frames = 3
	cfg.Animation.Workers = 2
	return cfg
}

func TestRunCommands(t *testing.T) {
	tests := []struct {
		command string
		args    []string
		want    []string
	}{
		{"info", nil, []string{"Bones:      3", "bone_02", "swing", "static=true"}},
		{"pose", []string{"-anim", "twist", "-time", "0.5", "-replace"}, []string{"Pose: twist", "Replace", "Segments: 2"}},
		{"compress", []string{"-t", "0.01", "-r", "1"}, []string{"swing", "twist", "Total:"}},
		{"simulate", nil, []string{"Instances: 4", "Frames:    3", "Updates:   12"}},
		{"help", nil, []string{"Commands:"}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(context.Background(), smallConfig(), assets.NewManager(), tt.command, tt.args, &out); err != nil {
				t.Fatalf("run %s: %v", tt.command, err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("expected %q in output:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		command string
		args    []string
	}{
		{"unknown", nil},
		{"pose", []string{"-anim", "missing"}},
		{"pose", []string{"-bogus"}},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		err := run(context.Background(), smallConfig(), assets.NewManager(), tt.command, tt.args, &out)
		if !errors.Is(err, errUsage) {
			t.Errorf("%s %v: expected usage error, got %v", tt.command, tt.args, err)
		}
	}
}

func TestSimulateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := run(ctx, smallConfig(), assets.NewManager(), "simulate", nil, &out)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
