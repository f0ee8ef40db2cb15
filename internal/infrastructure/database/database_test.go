package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

func TestNewDynamoDBConfigFromEnv(t *testing.T) {
	t.Setenv("AWS_REGION", "sa-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	cfg, err := NewDynamoDBConfigFromEnv(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Region != "sa-east-1" {
		t.Fatalf("expected sa-east-1, got %s", cfg.Region)
	}
	creds, err := cfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if creds.AccessKeyID != "local" {
		t.Fatalf("expected local credentials, got %s", creds.AccessKeyID)
	}
}

func TestDynamoDBOptions(t *testing.T) {
	var o dynamodb.Options
	dynamoDBOptions("")(&o)
	if o.BaseEndpoint != nil {
		t.Fatalf("expected no endpoint override, got %s", aws.ToString(o.BaseEndpoint))
	}
	dynamoDBOptions("http://localhost:8000")(&o)
	if aws.ToString(o.BaseEndpoint) != "http://localhost:8000" {
		t.Fatalf("expected endpoint override, got %v", o.BaseEndpoint)
	}
}

func TestConnectSnapshotStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	t.Setenv("SNAPSHOT_DB_PATH", path)

	store := ConnectSnapshotStore()
	defer store.Close()
	if store.Path() != path {
		t.Fatalf("expected %s, got %s", path, store.Path())
	}
}
