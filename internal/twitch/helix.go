package twitch

import (
	"context"
	"errors"
	"fmt"

	"github.com/nicklaw5/helix/v2"
)

// ErrNoLiveStream is returned when the broadcaster has no active stream.
var ErrNoLiveStream = errors.New("no live stream found")

// StreamInfo is the subset of stream metadata used in announcements.
type StreamInfo struct {
	GameName string
	Title    string
}

// NoopClient stands in when helix credentials are not configured. Callers
// fall back to fixed announcement text.
type NoopClient struct{}

func (NoopClient) GetStreamInfo(context.Context) (StreamInfo, error) {
	return StreamInfo{}, ErrNoLiveStream
}

type HelixClient struct {
	client        *helix.Client
	broadcasterID string
}

func NewHelixClient(clientID, userAccessToken, broadcasterID string) (*HelixClient, error) {
	client, err := helix.NewClient(&helix.Options{
		ClientID:        clientID,
		UserAccessToken: userAccessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create helix client: %w", err)
	}

	return &HelixClient{
		client:        client,
		broadcasterID: broadcasterID,
	}, nil
}

// GetStreamInfo fetches the broadcaster's current stream metadata.
func (hc *HelixClient) GetStreamInfo(ctx context.Context) (StreamInfo, error) {
	resp, err := hc.client.GetStreams(&helix.StreamsParams{
		UserIDs: []string{hc.broadcasterID},
	})
	if err != nil {
		return StreamInfo{}, fmt.Errorf("failed to get streams: %w", err)
	}
	if resp.ErrorStatus != 0 {
		return StreamInfo{}, fmt.Errorf("helix error %d: %s", resp.ErrorStatus, resp.ErrorMessage)
	}
	if len(resp.Data.Streams) == 0 {
		return StreamInfo{}, ErrNoLiveStream
	}

	stream := resp.Data.Streams[0]
	return StreamInfo{GameName: stream.GameName, Title: stream.Title}, nil
}
