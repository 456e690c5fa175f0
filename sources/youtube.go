package sources

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"golang.org/x/sync/errgroup"

	"adaptive_coach/config"
	"adaptive_coach/logger"
	"adaptive_coach/models"
)

// YouTube 拉取精选频道的 RSS
type YouTube struct {
	FeedURL    string
	PerChannel int
	Channels   []config.YouTubeChannel
	Client     *http.Client
}

func (y *YouTube) Name() string { return string(models.SourceYouTube) }

func (y *YouTube) Fetch(ctx context.Context, q Query) ([]models.RawRecord, error) {
	channels := y.channelsFor(q.Keywords)
	// 每个频道写入自己的槽位，保证输出顺序稳定
	perChannel := make([][]models.RawRecord, len(channels))

	g, gctx := errgroup.WithContext(ctx)
	for i, ch := range channels {
		i, ch := i, ch
		g.Go(func() error {
			items, err := y.fetchChannel(gctx, ch)
			if err != nil {
				// 单个频道失败不影响其他频道
				logger.Warn("youtube channel fetch failed", "channel", ch.Name, "error", err)
				return nil
			}
			perChannel[i] = items
			return nil
		})
	}
	_ = g.Wait()

	records := make([]models.RawRecord, 0)
	for _, items := range perChannel {
		records = append(records, items...)
	}
	return records, nil
}

// channelsFor 选出话题与关键词相关的频道；没有命中时使用全部频道
func (y *YouTube) channelsFor(keywords []string) []config.YouTubeChannel {
	matched := make([]config.YouTubeChannel, 0, len(y.Channels))
	for _, ch := range y.Channels {
		if len(ch.Topics) == 0 || topicsMatch(ch.Topics, keywords) {
			matched = append(matched, ch)
		}
	}
	if len(matched) == 0 {
		return y.Channels
	}
	return matched
}

func topicsMatch(topics, keywords []string) bool {
	for _, t := range topics {
		t = strings.ToLower(t)
		for _, k := range keywords {
			k = strings.ToLower(k)
			if strings.Contains(k, t) || strings.Contains(t, k) {
				return true
			}
		}
	}
	return false
}

func (y *YouTube) fetchChannel(ctx context.Context, ch config.YouTubeChannel) ([]models.RawRecord, error) {
	fp := gofeed.NewParser()
	fp.Client = y.Client
	feed, err := fp.ParseURLWithContext(y.FeedURL+ch.ID, ctx)
	if err != nil {
		return nil, err
	}

	records := make([]models.RawRecord, 0, y.PerChannel)
	for _, item := range feed.Items {
		if len(records) >= y.PerChannel {
			break
		}
		videoID := youtubeVideoID(item)
		if videoID == "" {
			continue
		}
		rec := models.RawRecord{
			Kind:        models.SourceYouTube,
			ID:          "youtube_" + videoID,
			Title:       item.Title,
			Summary:     firstNonEmpty(item.Description, mediaGroupValue(item.Extensions, "description")),
			URL:         firstNonEmpty(item.Link, "https://www.youtube.com/watch?v="+videoID),
			Author:      ch.Name,
			PublishedAt: item.PublishedParsed,
			Relevance:   ptr(0.75),
		}
		if item.Image != nil {
			rec.Thumbnail = item.Image.URL
		} else {
			rec.Thumbnail = mediaGroupAttr(item.Extensions, "thumbnail", "url")
		}
		records = append(records, rec)
	}
	return records, nil
}

func youtubeVideoID(item *gofeed.Item) string {
	if yt, ok := item.Extensions["yt"]; ok {
		if ids := yt["videoId"]; len(ids) > 0 && ids[0].Value != "" {
			return ids[0].Value
		}
	}
	return strings.TrimPrefix(item.GUID, "yt:video:")
}

func mediaGroup(exts ext.Extensions) (ext.Extension, bool) {
	media, ok := exts["media"]
	if !ok || len(media["group"]) == 0 {
		return ext.Extension{}, false
	}
	return media["group"][0], true
}

func mediaGroupValue(exts ext.Extensions, child string) string {
	group, ok := mediaGroup(exts)
	if !ok || len(group.Children[child]) == 0 {
		return ""
	}
	return group.Children[child][0].Value
}

func mediaGroupAttr(exts ext.Extensions, child, attr string) string {
	group, ok := mediaGroup(exts)
	if !ok || len(group.Children[child]) == 0 {
		return ""
	}
	return group.Children[child][0].Attrs[attr]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
