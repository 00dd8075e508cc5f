package cache

import (
	"context"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureBackend stores archives in an Azure Blob Storage container, per
// §4.6's azure backend kind.
type AzureBackend struct {
	NameTag   string
	Container string
	Client    *azblob.Client
}

func (a *AzureBackend) Name() string { return a.NameTag }

func (a *AzureBackend) Lookup(ctx context.Context, key string) (bool, error) {
	_, err := a.Client.ServiceClient().NewContainerClient(a.Container).NewBlobClient(key).GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (a *AzureBackend) Download(ctx context.Context, key string, w io.Writer) error {
	resp, err := a.Client.DownloadStream(ctx, a.Container, key, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(w, resp.Body)
	return err
}

func (a *AzureBackend) Upload(ctx context.Context, key string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	_, err = a.Client.UploadBuffer(ctx, a.Container, key, data, nil)
	return err
}

func (a *AzureBackend) Scan(ctx context.Context) ([]string, error) {
	var keys []string
	pager := a.Client.NewListBlobsFlatPager(a.Container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				keys = append(keys, *item.Name)
			}
		}
	}
	return keys, nil
}

func (a *AzureBackend) Clean(ctx context.Context, keys []string) error {
	for _, k := range keys {
		if _, err := a.Client.DeleteBlob(ctx, a.Container, k, nil); err != nil {
			return err
		}
	}
	return nil
}
