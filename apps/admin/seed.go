package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/mentor"
	"github.com/mentormatch/mentormatch/core/review"
	"github.com/mentormatch/mentormatch/core/session"
)

type (
	seedSession struct {
		date     core.Date
		mentor   string
		topic    string
		duration float64
		rating   int
	}

	seedReview struct {
		date   core.Date
		mentor string
		rating int
		title  string
		text   string
	}
)

var (
	seedMentors = []mentor.NewMentor{
		{Name: "Dmitry", Specialty: "JavaScript", Lat: 55.75, Lng: 37.60},
		{Name: "Yaroslav", Specialty: "C++", Lat: 55.74, Lng: 37.65},
		{Name: "Ann", Specialty: "Frontend", Lat: 55.77, Lng: 37.62},
	}

	seedSessions = []seedSession{
		{core.NewDate(2024, 1, 20), "Dmitry", "JavaScript Advanced", 2, 5},
		{core.NewDate(2024, 1, 18), "Yaroslav", "C++ Memory Management", 1.5, 4},
		{core.NewDate(2024, 1, 15), "Ann", "React Hooks", 2, 5},
		{core.NewDate(2024, 1, 12), "Dmitry", "Node.js Basics", 1, 5},
	}

	seedReviews = []seedReview{
		{
			date:   core.NewDate(2024, 1, 20),
			mentor: "Dmitry (JavaScript)",
			rating: 5,
			title:  "Great mentor!",
			text:   "Dmitry explains complex JavaScript concepts really well. Recommended for beginners and beyond.",
		},
		{
			date:   core.NewDate(2024, 1, 15),
			mentor: "Yaroslav (C++)",
			rating: 4,
			title:  "Useful C++ sessions",
			text:   "Yaroslav helped me with advanced C++ topics. A bit hard for newcomers, but **very** informative.",
		},
		{
			date:   core.NewDate(2024, 1, 10),
			mentor: "Ann (Frontend)",
			rating: 5,
			title:  "Best frontend mentor",
			text:   "Ann is not only a great developer but a *great* teacher. She taught me many modern frontend practices.",
		},
	}
)

// seed loads the demo data for the user owning email.
// Mentors are matched by name, sessions and reviews are only added to a user who has none.
func (cli *commandLine) seed(email string) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	mentorIDs, err := cli.seedMentors(ctx)
	if err != nil {
		return err
	}

	sessions, err := cli.sessionSvc.QueryByUser(ctx, usr.ID)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		for _, s := range seedSessions {
			_, err = cli.sessionSvc.Create(ctx, session.NewSession{
				UserID:   core.Int(usr.ID),
				MentorID: core.Int(mentorIDs[s.mentor]),
				Topic:    s.topic,
				Duration: core.Float(s.duration),
				Rating:   core.Int(s.rating),
				Date:     s.date,
			})
			if err != nil {
				return errors.Wrapf(err, "seeding session %q", s.topic)
			}
		}
	}

	reviews, err := cli.reviewSvc.QueryByUser(ctx, usr.ID)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		for _, r := range seedReviews {
			_, err = cli.reviewSvc.Create(ctx, review.NewReview{
				UserID:     core.Int(usr.ID),
				MentorName: r.mentor,
				Rating:     core.Int(r.rating),
				Title:      r.title,
				Text:       r.text,
				Date:       r.date,
			})
			if err != nil {
				return errors.Wrapf(err, "seeding review %q", r.title)
			}
		}
	}

	fmt.Printf("seeded user %d <%s>\n", usr.ID, usr.Email)
	return nil
}

// seedMentors creates the missing demo mentors and returns the ID of every demo mentor by name.
func (cli *commandLine) seedMentors(ctx context.Context) (map[string]int, error) {
	existing, err := cli.mentorSvc.Query(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int, len(seedMentors))
	for _, m := range existing {
		ids[m.Name] = m.ID
	}

	for _, nm := range seedMentors {
		if _, ok := ids[nm.Name]; ok {
			continue
		}
		m, err := cli.mentorSvc.Create(ctx, nm)
		if err != nil {
			return nil, errors.Wrapf(err, "seeding mentor %q", nm.Name)
		}
		ids[m.Name] = m.ID
	}
	return ids, nil
}
