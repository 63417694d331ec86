package cli

import (
	"context"
	"testing"
)

func TestTriggerRejectsUnknownJob(t *testing.T) {
	cli, err := NewJobsCLI("127.0.0.1:6379")
	if err != nil {
		t.Fatalf("init cli: %v", err)
	}
	defer func() { _ = cli.Close() }()

	if _, err := cli.Trigger(context.Background(), "mail:send"); err == nil {
		t.Fatal("expected unsupported job to be rejected")
	}
}

func TestTriggerRequiresClient(t *testing.T) {
	var cli *JobsCLI
	if _, err := cli.Trigger(context.Background(), "auth:verify_session"); err == nil {
		t.Fatal("expected nil client to be rejected")
	}
}
