package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	apperrors "blog/internal/errors"
	"blog/internal/repository"
	"blog/internal/service"
)

// SeedData is the document read by the seed tool. Posts and comments name
// their author by username.
type SeedData struct {
	Users []SeedUser `json:"users"`
	Posts []SeedPost `json:"posts"`
}

// SeedUser is a user to register.
type SeedUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SeedPost is a post with its comments.
type SeedPost struct {
	Author   string        `json:"author"`
	Title    string        `json:"title"`
	Content  string        `json:"content"`
	Comments []SeedComment `json:"comments"`
}

// SeedComment is a comment on the enclosing post.
type SeedComment struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

type seedStats struct {
	UsersCreated    int
	UsersReused     int
	PostsCreated    int
	CommentsCreated int
}

type seeder struct {
	users    service.UserService
	posts    service.PostService
	comments service.CommentService
	userRepo repository.UserRepository
}

// loadSeedData reads seed data from a local file or, for http(s) sources,
// from the network.
func loadSeedData(source string) (*SeedData, error) {
	var body []byte
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err = fetch(source)
	} else {
		body, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	var data SeedData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &data, nil
}

func fetch(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seed data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed source returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// seed registers users, then creates posts and their comments. Users that are
// already registered are reused, so running it twice only duplicates content.
func (s *seeder) seed(ctx context.Context, data *SeedData) (seedStats, error) {
	var stats seedStats
	ids := make(map[string]uint, len(data.Users))

	for _, u := range data.Users {
		user, err := s.users.Register(ctx, u.Username, u.Email, u.Password)
		switch {
		case err == nil:
			ids[u.Username] = user.ID
			stats.UsersCreated++
		case errors.Is(err, apperrors.ErrUsernameTaken), errors.Is(err, apperrors.ErrEmailTaken):
			existing, findErr := s.userRepo.FindByUsername(ctx, u.Username)
			if findErr != nil {
				return stats, fmt.Errorf("user %q: %w", u.Username, err)
			}
			ids[u.Username] = existing.ID
			stats.UsersReused++
		default:
			return stats, fmt.Errorf("error creating user %q: %w", u.Username, err)
		}
	}

	for _, p := range data.Posts {
		authorID, ok := ids[p.Author]
		if !ok {
			return stats, fmt.Errorf("post %q: unknown author %q", p.Title, p.Author)
		}
		post, err := s.posts.CreatePost(ctx, authorID, p.Title, p.Content)
		if err != nil {
			return stats, fmt.Errorf("error creating post %q: %w", p.Title, err)
		}
		stats.PostsCreated++

		for _, c := range p.Comments {
			commenterID, ok := ids[c.Author]
			if !ok {
				return stats, fmt.Errorf("comment on %q: unknown author %q", p.Title, c.Author)
			}
			if _, err := s.comments.CreateComment(ctx, commenterID, post.ID, c.Content); err != nil {
				return stats, fmt.Errorf("error creating comment on %q: %w", p.Title, err)
			}
			stats.CommentsCreated++
		}
	}

	return stats, nil
}
