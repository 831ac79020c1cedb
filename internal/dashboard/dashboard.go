package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/models"
)

// Sources are the loaders behind the seven admin lists.
type Sources struct {
	Webinars       Loader[models.Webinar]
	Events         Loader[models.Event]
	Testimonials   Loader[models.Testimonial]
	CommunityLinks Loader[models.CommunityLink]
	Gallery        Loader[models.GalleryImage]
	Messages       Loader[models.ContactMessage]
	Reviews        Loader[models.Review]
}

// Dashboard is the admin landing view.
type Dashboard struct {
	Webinars       *ListController[models.Webinar]
	Events         *ListController[models.Event]
	Testimonials   *ListController[models.Testimonial]
	CommunityLinks *ListController[models.CommunityLink]
	Gallery        *ListController[models.GalleryImage]
	Messages       *ListController[models.ContactMessage]
	Reviews        *ListController[models.Review]
}

// SectionSummary describes one list after a load.
type SectionSummary struct {
	Name  string       `json:"name"`
	Count int          `json:"count"`
	State RequestState `json:"state"`
}

// Summary is the result of Load.
type Summary struct {
	Sections       []SectionSummary `json:"sections"`
	PendingReviews int              `json:"pendingReviews"`
	NewMessages    int              `json:"newMessages"`
}

// New builds the dashboard lists from src.
func New(src Sources, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		Webinars:       NewListController("webinars", src.Webinars, logger),
		Events:         NewListController("events", src.Events, logger),
		Testimonials:   NewListController("testimonials", src.Testimonials, logger),
		CommunityLinks: NewListController("community_links", src.CommunityLinks, logger),
		Gallery:        NewListController("gallery", src.Gallery, logger),
		Messages:       NewListController("contact_messages", src.Messages, logger),
		Reviews:        NewListController("reviews", src.Reviews, logger),
	}
}

type refresher interface {
	Refresh(ctx context.Context) error
}

// Load refreshes every list concurrently. A failing list keeps its previous
// items and reports failed in the summary; the other lists are unaffected.
func (d *Dashboard) Load(ctx context.Context) Summary {
	lists := []refresher{d.Webinars, d.Events, d.Testimonials, d.CommunityLinks, d.Gallery, d.Messages, d.Reviews}
	var wg sync.WaitGroup
	for _, l := range lists {
		wg.Add(1)
		go func(l refresher) {
			defer wg.Done()
			_ = l.Refresh(ctx)
		}(l)
	}
	wg.Wait()

	summary := Summary{Sections: []SectionSummary{
		summarize(d.Webinars),
		summarize(d.Events),
		summarize(d.Testimonials),
		summarize(d.CommunityLinks),
		summarize(d.Gallery),
		summarize(d.Messages),
		summarize(d.Reviews),
	}}
	for _, r := range d.Reviews.Items() {
		if r.Status == models.ReviewStatusPending {
			summary.PendingReviews++
		}
	}
	for _, m := range d.Messages.Items() {
		if m.Status == models.MessageStatusNew {
			summary.NewMessages++
		}
	}
	return summary
}

func summarize[T any](c *ListController[T]) SectionSummary {
	return SectionSummary{Name: c.Name(), Count: len(c.Items()), State: c.State()}
}
