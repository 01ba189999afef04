// Command seed loads a demo classroom into the database: one linear homework
// assignment, one variation pool, one gated classwork set, plus demo logins
// (teacher/teacher, student/student).
package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/physika-edu/physika-lms/internal/catalog"
	"github.com/physika-edu/physika-lms/internal/config"
	"github.com/physika-edu/physika-lms/internal/db"
	"github.com/physika-edu/physika-lms/internal/logger"
)

func main() {
	cfg := config.FromEnv()

	log, err := logger.New(string(cfg.Mode))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal("db open failed", "err", err)
	}
	cat := catalog.NewSQLStore(dbh)

	room := catalog.Classroom{
		ID:             "demo-room",
		Name:           "Physics 9A",
		AllowedIP:      "203.0.113.10",
		IPCheckEnabled: false, // flip on to exercise the classwork gate
	}
	if err := cat.PutClassroom(ctx, room); err != nil {
		log.Fatal("classroom", "err", err)
	}

	homework := catalog.Collection{
		ID:          "demo-hw",
		ClassroomID: room.ID,
		Title:       "Kinematics homework",
		Category:    catalog.CategoryHomework,
	}
	classwork := catalog.Collection{
		ID:          "demo-cw",
		ClassroomID: room.ID,
		Title:       "Kinematics in-class check",
		Category:    catalog.CategoryClasswork,
	}
	for _, c := range []catalog.Collection{homework, classwork} {
		if err := cat.PutCollection(ctx, c); err != nil {
			log.Fatal("collection", "id", c.ID, "err", err)
		}
	}

	assignments := []catalog.Assignment{
		{
			ID:           "demo-linear",
			ClassroomID:  room.ID,
			CollectionID: homework.ID,
			OrderIndex:   0,
			Title:        "Free fall",
			Published:    true,
			Questions: []catalog.Question{
				{
					Type:             "numerical",
					Prompt:           "A stone falls for 3 s. How far does it drop, in m? (g = 9.8 m/s^2)",
					Target:           44.1,
					TolerancePercent: 5,
					SolutionText:     "d = g t^2 / 2 = 9.8 * 9 / 2 = 44.1 m",
				},
				{
					Type:   "multiple_choice",
					Prompt: "Ignoring air resistance, which falls faster?",
					Choices: []catalog.Choice{
						{Label: "a", Text: "A 1 kg ball"},
						{Label: "b", Text: "A 10 kg ball"},
						{Label: "c", Text: "Neither, they fall together"},
					},
					CorrectLabel: "c",
					SolutionText: "Acceleration in free fall is independent of mass.",
				},
				{
					Type:             "numerical",
					Prompt:           "What speed does the stone reach after 3 s, in m/s?",
					Target:           29.4,
					TolerancePercent: 5,
					SolutionText:     "v = g t = 29.4 m/s",
				},
			},
		},
		{
			ID:                 "demo-variations",
			ClassroomID:        room.ID,
			CollectionID:       homework.ID,
			OrderIndex:         1,
			Title:              "Projectile range (practice pool)",
			Published:          true,
			RequiredVariations: 2,
			Questions: []catalog.Question{
				{Type: "numerical", Prompt: "v0=10 m/s at 45 deg. Range in m?", Target: 10.2, TolerancePercent: 5},
				{Type: "numerical", Prompt: "v0=20 m/s at 45 deg. Range in m?", Target: 40.8, TolerancePercent: 5},
				{Type: "numerical", Prompt: "v0=15 m/s at 30 deg. Range in m?", Target: 19.9, TolerancePercent: 5},
				{Type: "numerical", Prompt: "v0=25 m/s at 60 deg. Range in m?", Target: 55.2, TolerancePercent: 5},
			},
		},
		{
			ID:           "demo-classwork",
			ClassroomID:  room.ID,
			CollectionID: classwork.ID,
			OrderIndex:   0,
			Title:        "In-class velocity check",
			Published:    true,
			Questions: []catalog.Question{
				{
					Type:             "numerical",
					Prompt:           "A car covers 120 m in 8 s. Average speed in m/s?",
					Target:           15,
					TolerancePercent: 2,
				},
			},
		},
	}
	for _, a := range assignments {
		if err := cat.PutAssignment(ctx, a); err != nil {
			log.Fatal("assignment", "id", a.ID, "err", err)
		}
	}

	users := []struct{ id, username, password, role string }{
		{uuid.NewString(), "teacher", "teacher", "teacher"},
		{uuid.NewString(), "student", "student", "student"},
	}
	now := time.Now().Unix()
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), 12)
		if err != nil {
			log.Fatal("hash", "err", err)
		}
		_, err = dbh.ExecContext(ctx, `
			INSERT INTO users (id, username, password_hash, role, created_at)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (username) DO UPDATE SET password_hash=EXCLUDED.password_hash, role=EXCLUDED.role
		`, u.id, u.username, string(hash), u.role, now)
		if err != nil {
			log.Fatal("user", "username", u.username, "err", err)
		}
	}

	log.Info("seed complete",
		"classroom", room.ID,
		"collections", 2,
		"assignments", len(assignments),
		"users", len(users),
	)
}
