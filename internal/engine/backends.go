package engine

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bobbuildtool/bob/internal/cache"
	"github.com/bobbuildtool/bob/internal/config"
)

// newCacheClient builds a live cache.Client from a project's configured
// archive entries, constructing whatever third-party SDK client each
// backend kind needs (§6 "archive").
func newCacheClient(entries []config.Archive) (*cache.Client, error) {
	wrapped := make([]cache.ConfiguredBackend, 0, len(entries))
	for _, a := range entries {
		backend, err := newBackend(a)
		if err != nil {
			return nil, err
		}
		wrapped = append(wrapped, cache.WithFlags(backend, toFlags(a.Flags)))
	}
	return cache.NewClient(wrapped...), nil
}

func toFlags(f config.ArchiveFlags) cache.Flags {
	return cache.Flags{
		Download:    boolOr(f.Download, true),
		Upload:      boolOr(f.Upload, true),
		SrcDownload: boolOr(f.SrcDownload, false),
		SrcUpload:   boolOr(f.SrcUpload, false),
	}
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func newBackend(a config.Archive) (cache.Backend, error) {
	switch a.Backend {
	case config.BackendFile:
		return &cache.FileBackend{NameTag: a.Name, Dir: a.Path}, nil
	case config.BackendHTTP:
		return &cache.HTTPBackend{NameTag: a.Name, BaseURL: a.URL}, nil
	case config.BackendS3:
		return newS3Backend(a)
	case config.BackendAzure:
		return newAzureBackend(a)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownArchiveBackend, a.Backend)
	}
}

// newS3Backend loads the default AWS credential chain (environment,
// shared config, IMDS) the way any AWS SDK v2 consumer does; no
// bob-specific credential handling is needed since the archive entry's
// URL carries bucket and key-prefix selection.
func newS3Backend(a config.Archive) (cache.Backend, error) {
	bucket, prefix := splitBucketPrefix(a.URL)
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for archive %q: %w", a.Name, err)
	}
	return &cache.S3Backend{
		NameTag: a.Name,
		Bucket:  bucket,
		Prefix:  prefix,
		Client:  s3.NewFromConfig(cfg),
	}, nil
}

// newAzureBackend connects anonymously, or via a SAS token embedded in
// the configured URL: azidentity's full credential chain is not part of
// this build's dependency set, so azure archives rely on a URL that
// already carries whatever SAS token or public access the storage
// account grants.
func newAzureBackend(a config.Archive) (cache.Backend, error) {
	container, serviceURL := splitContainerURL(a.URL)
	client, err := azblob.NewClientWithNoCredential(serviceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting azure archive %q: %w", a.Name, err)
	}
	return &cache.AzureBackend{
		NameTag:   a.Name,
		Container: container,
		Client:    client,
	}, nil
}

// splitBucketPrefix reads an "s3://bucket/prefix" URL into its parts.
func splitBucketPrefix(raw string) (bucket, prefix string) {
	trimmed := strings.TrimPrefix(raw, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	bucket = parts[0]
	if len(parts) == 2 {
		prefix = parts[1]
	}
	return
}

// splitContainerURL reads a blob container URL into the container name
// and the service-level URL azblob.NewClientWithNoCredential expects,
// e.g. "https://acct.blob.core.windows.net/container?sv=...&sig=..."
// splits into container "container" and the account URL with the
// original query string (SAS token) preserved.
func splitContainerURL(raw string) (container, serviceURL string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", raw
	}
	segments := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
	container = segments[0]
	u.Path = ""
	return container, u.String()
}
