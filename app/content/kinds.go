package content

import (
	"context"
	"strings"
	"time"

	"github.com/lysyi3m/radio-site/app/revalidate"
	"github.com/lysyi3m/radio-site/app/store"
)

var BlogPosts = Kind[BlogPost]{
	Collection: CollectionBlogPosts,
	Paths:      []string{revalidate.PathHome, revalidate.PathBlog + "/*", revalidate.PathAdminBlog},
	Order:      store.Query{OrderBy: "publishDate", Dir: store.Desc},
	Prepare:    prepareBlogPost,
}

var Campaigns = Kind[Campaign]{
	Collection: CollectionCampaigns,
	Paths:      []string{revalidate.PathHome, revalidate.PathCampaigns, revalidate.PathAdminCampaigns},
}

var HeroSlides = Kind[HeroSlide]{
	Collection: CollectionHeroSlides,
	Paths:      []string{revalidate.PathHome, revalidate.PathAdminHero},
	Order:      store.Query{OrderBy: "order"},
}

var TeamMembers = Kind[TeamMember]{
	Collection: CollectionTeamMembers,
	Paths:      []string{revalidate.PathTeam, revalidate.PathAdminTeam},
	Order:      store.Query{OrderBy: "order"},
}

var RecordedShows = Kind[RecordedShow]{
	Collection: CollectionRecordedShows,
	Paths:      []string{revalidate.PathHome, revalidate.PathRecordings + "/*", revalidate.PathAdminRecordings},
	Order:      store.Query{OrderBy: "publishDate", Dir: store.Desc},
	Prepare:    prepareRecordedShow,
}

var Sponsors = Kind[Sponsor]{
	Collection: CollectionSponsors,
	Paths:      []string{revalidate.PathHome, revalidate.PathSponsors, revalidate.PathAdminSponsors},
	Order:      store.Query{OrderBy: "order"},
}

var TopSongs = Kind[Song]{
	Collection: CollectionTopSongs,
	Paths:      []string{revalidate.PathHome, revalidate.PathTop10, revalidate.PathAdminTop10},
	Order:      store.Query{OrderBy: "rank"},
}

var InvitationCodes = Kind[InvitationCode]{
	Collection: CollectionInvitationCodes,
	Paths:      []string{revalidate.PathAdminInvitations},
	Order:      store.Query{OrderBy: "createdAt", Dir: store.Desc},
	Prepare: func(_ context.Context, _ store.Store, v, prev *InvitationCode, now time.Time) error {
		v.Code = strings.ToUpper(strings.TrimSpace(v.Code))
		if prev != nil {
			v.CreatedAt = prev.CreatedAt
		} else {
			v.CreatedAt = now
		}
		return nil
	},
}

var JoinSubmissions = Kind[JoinSubmission]{
	Collection: CollectionJoinSubmissions,
	Paths:      []string{revalidate.PathAdminSubmissions},
	Order:      store.Query{OrderBy: "createdAt", Dir: store.Desc},
	Prepare: func(_ context.Context, _ store.Store, v, prev *JoinSubmission, now time.Time) error {
		if prev != nil {
			v.CreatedAt = prev.CreatedAt
		} else {
			v.CreatedAt = now
			v.Reviewed = false
		}
		return nil
	},
}

var UserSubmissions = Kind[UserSubmission]{
	Collection: CollectionUserSubmissions,
	Paths:      []string{revalidate.PathAdminSubmissions},
	Order:      store.Query{OrderBy: "createdAt", Dir: store.Desc},
	Prepare: func(_ context.Context, _ store.Store, v, prev *UserSubmission, now time.Time) error {
		if prev != nil {
			v.CreatedAt = prev.CreatedAt
		} else {
			v.CreatedAt = now
			v.Read = false
		}
		return nil
	},
}

// The publish date is stamped by the server on create and kept on update.
// The slug follows the title unless the editor set one explicitly.
func prepareBlogPost(ctx context.Context, s store.Store, v, prev *BlogPost, now time.Time) error {
	excludeID := ""
	if prev != nil {
		excludeID = prev.ID
		v.PublishDate = prev.PublishDate
		if v.Slug == "" {
			v.Slug = prev.Slug
		}
	} else {
		v.PublishDate = now
	}

	base := Slugify(v.Title)
	if v.Slug != "" {
		base = Slugify(v.Slug)
	}
	slug, err := uniqueSlug(ctx, s, CollectionBlogPosts, base, excludeID)
	if err != nil {
		return err
	}
	v.Slug = slug
	return nil
}

// Imported shows bring their own publish date; hand-made ones get the
// server time.
func prepareRecordedShow(_ context.Context, _ store.Store, v, prev *RecordedShow, now time.Time) error {
	switch {
	case prev != nil:
		v.PublishDate = prev.PublishDate
		if v.GUID == "" {
			v.GUID = prev.GUID
		}
	case v.PublishDate.IsZero() || v.GUID == "":
		v.PublishDate = now
	}
	v.PublishDate = v.PublishDate.UTC().Truncate(time.Second)
	return nil
}

// Repositories bundles one repository per content type.
type Repositories struct {
	BlogPosts       *Repository[BlogPost, *BlogPost]
	Campaigns       *Repository[Campaign, *Campaign]
	HeroSlides      *Repository[HeroSlide, *HeroSlide]
	TeamMembers     *Repository[TeamMember, *TeamMember]
	RecordedShows   *Repository[RecordedShow, *RecordedShow]
	Sponsors        *Repository[Sponsor, *Sponsor]
	TopSongs        *Repository[Song, *Song]
	InvitationCodes *Repository[InvitationCode, *InvitationCode]
	JoinSubmissions *Repository[JoinSubmission, *JoinSubmission]
	UserSubmissions *Repository[UserSubmission, *UserSubmission]
}

func NewRepositories(s store.Store, r revalidate.Revalidator) *Repositories {
	return &Repositories{
		BlogPosts:       NewRepository[BlogPost](s, r, BlogPosts),
		Campaigns:       NewRepository[Campaign](s, r, Campaigns),
		HeroSlides:      NewRepository[HeroSlide](s, r, HeroSlides),
		TeamMembers:     NewRepository[TeamMember](s, r, TeamMembers),
		RecordedShows:   NewRepository[RecordedShow](s, r, RecordedShows),
		Sponsors:        NewRepository[Sponsor](s, r, Sponsors),
		TopSongs:        NewRepository[Song](s, r, TopSongs),
		InvitationCodes: NewRepository[InvitationCode](s, r, InvitationCodes),
		JoinSubmissions: NewRepository[JoinSubmission](s, r, JoinSubmissions),
		UserSubmissions: NewRepository[UserSubmission](s, r, UserSubmissions),
	}
}

// BlogPostBySlug returns the post published under slug.
func (rs *Repositories) BlogPostBySlug(ctx context.Context, slug string) (*BlogPost, error) {
	posts, err := rs.BlogPosts.List(ctx, store.Query{
		Where:   []store.Filter{{Field: "slug", Value: slug}},
		OrderBy: "slug",
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, store.ErrNotFound
	}
	return &posts[0], nil
}
