package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/graphgo/blobstore"
)

// DDBClient is the subset of the DynamoDB API the catalog uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ErrConcurrentCommit is returned when two writers race to commit the same
// catalog version. The loser re-reads Latest and retries with a fresh
// snapshot key.
var ErrConcurrentCommit = errors.New("concurrent snapshot commit detected")

// CatalogEntry records one committed snapshot of a graph.
type CatalogEntry struct {
	// Graph is the catalog partition key, normally Graph.Name().
	Graph string

	// Key is the blob name of the snapshot inside the store.
	Key string

	// Hash is the structural hash at save time. Loaders compare it against
	// the hash of the downloaded snapshot before trusting the blob.
	Hash uint64

	NodeCount uint32
	EdgeCount uint64

	// Version is assigned by Commit: monotonically increasing per graph,
	// starting at 1.
	Version uint64
}

// SnapshotCatalog tracks the latest snapshot per graph in a DynamoDB table.
//
// S3 offers no compare-and-swap, so the "current snapshot" pointer lives
// here: Commit appends a new version with a conditional write, and Latest
// reads the newest one. Multiple writers coordinate safely; the loser of a
// race gets ErrConcurrentCommit instead of silently clobbering.
//
// Table schema: partition key "graph" (S), sort key "version" (N). Create
// with:
//
//	aws dynamodb create-table \
//	  --table-name graphgo-snapshots \
//	  --attribute-definitions AttributeName=graph,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=graph,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type SnapshotCatalog struct {
	client    DDBClient
	tableName string
}

// NewSnapshotCatalog creates a catalog over the given DynamoDB table.
func NewSnapshotCatalog(client DDBClient, tableName string) *SnapshotCatalog {
	return &SnapshotCatalog{client: client, tableName: tableName}
}

// Latest returns the newest committed entry for the graph, or
// blobstore.ErrNotFound if no snapshot was ever committed.
func (c *SnapshotCatalog) Latest(ctx context.Context, graph string) (CatalogEntry, error) {
	resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("graph = :g"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":g": &types.AttributeValueMemberS{Value: graph},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("query snapshot catalog: %w", err)
	}
	if len(resp.Items) == 0 {
		return CatalogEntry{}, blobstore.ErrNotFound
	}
	return decodeEntry(graph, resp.Items[0])
}

// Commit writes entry as the next version for entry.Graph. The version is
// read-then-conditionally-written; a concurrent committer of the same
// version loses with ErrConcurrentCommit.
func (c *SnapshotCatalog) Commit(ctx context.Context, entry CatalogEntry) error {
	current, err := c.Latest(ctx, entry.Graph)
	if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return err
	}
	entry.Version = current.Version + 1

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"graph":           &types.AttributeValueMemberS{Value: entry.Graph},
			"version":         &types.AttributeValueMemberN{Value: strconv.FormatUint(entry.Version, 10)},
			"snapshot_key":    &types.AttributeValueMemberS{Value: entry.Key},
			"structural_hash": &types.AttributeValueMemberN{Value: strconv.FormatUint(entry.Hash, 10)},
			"node_count":      &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(entry.NodeCount), 10)},
			"edge_count":      &types.AttributeValueMemberN{Value: strconv.FormatUint(entry.EdgeCount, 10)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return ErrConcurrentCommit
		}
		return fmt.Errorf("commit snapshot version: %w", err)
	}
	return nil
}

func decodeEntry(graph string, item map[string]types.AttributeValue) (CatalogEntry, error) {
	entry := CatalogEntry{Graph: graph}

	version, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return CatalogEntry{}, errors.New("snapshot catalog: missing version attribute")
	}
	v, err := strconv.ParseUint(version.Value, 10, 64)
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("snapshot catalog: bad version: %w", err)
	}
	entry.Version = v

	key, ok := item["snapshot_key"].(*types.AttributeValueMemberS)
	if !ok {
		return CatalogEntry{}, errors.New("snapshot catalog: missing snapshot_key attribute")
	}
	entry.Key = key.Value

	if hash, ok := item["structural_hash"].(*types.AttributeValueMemberN); ok {
		if entry.Hash, err = strconv.ParseUint(hash.Value, 10, 64); err != nil {
			return CatalogEntry{}, fmt.Errorf("snapshot catalog: bad structural_hash: %w", err)
		}
	}
	if nodes, ok := item["node_count"].(*types.AttributeValueMemberN); ok {
		n, err := strconv.ParseUint(nodes.Value, 10, 32)
		if err != nil {
			return CatalogEntry{}, fmt.Errorf("snapshot catalog: bad node_count: %w", err)
		}
		entry.NodeCount = uint32(n)
	}
	if edges, ok := item["edge_count"].(*types.AttributeValueMemberN); ok {
		if entry.EdgeCount, err = strconv.ParseUint(edges.Value, 10, 64); err != nil {
			return CatalogEntry{}, fmt.Errorf("snapshot catalog: bad edge_count: %w", err)
		}
	}
	return entry, nil
}
