// Command campus is a minimal console front-end for exercising the SDK:
// sign in, browse courses and tail a chat group live.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"campus"
	"campus/config"
	"campus/internal/domain/entity"
	logs "campus/internal/infra/log"

	"go.uber.org/fx"
)

func main() {
	fx.New(
		fx.Provide(
			config.New,
			logs.New,
			campus.New,
		),
		fx.Invoke(run),
	).Run()
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, client *campus.Client, logger *slog.Logger) {
	client.OnSessionExpired(func() {
		logger.Warn("session expired, sign in again")
	})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := dispatch(client); err != nil {
					logger.Error("command failed", slog.Any("error", err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))

					return
				}
				_ = shutdowner.Shutdown()
			}()

			return nil
		},
	})
}

func dispatch(client *campus.Client) error {
	args := os.Args[1:]
	if len(args) == 0 {
		return usage()
	}

	ctx := context.Background()
	switch args[0] {
	case "login":
		if len(args) != 3 {
			return usage()
		}

		return login(ctx, client, args[1], args[2])
	case "logout":
		return client.Auth.SignOut(ctx)
	case "whoami":
		return whoami(ctx, client)
	case "courses":
		return courses(ctx, client)
	case "chat":
		if len(args) != 3 {
			return usage()
		}

		return chat(ctx, client, args[1], args[2])
	default:
		return usage()
	}
}

func usage() error {
	fmt.Fprintln(os.Stderr, "usage: campus login <username> <password> | logout | whoami | courses | chat <courseID> <chatGroupID>")

	return fmt.Errorf("invalid arguments")
}

func login(ctx context.Context, client *campus.Client, username, password string) error {
	if _, err := client.Auth.SignIn(ctx, username, password); err != nil {
		return err
	}

	claims, err := client.Auth.Claims()
	if err != nil {
		return err
	}
	fmt.Printf("signed in as user %d (type %d), token valid until %s\n",
		claims.UserID, claims.UserType, claims.ExpiresAt.Format("15:04:05"))

	return nil
}

func whoami(ctx context.Context, client *campus.Client) error {
	me, err := client.Users.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\n", me.Username, me.Email)

	stats, err := client.Users.MyCourseStats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("courses: %d enrolled, %d completed\n", stats.CourseCount, stats.TotalCompletedCourses)

	return nil
}

func courses(ctx context.Context, client *campus.Client) error {
	page, err := client.Courses.List(ctx, entity.CourseListParams{})
	if err != nil {
		return err
	}

	fmt.Printf("%d courses\n", page.Count)
	for _, course := range page.Results {
		fmt.Printf("  #%d %-40s %s (%s)\n", course.ID, course.Title, course.Status, course.Category)
	}

	return nil
}

func chat(ctx context.Context, client *campus.Client, courseArg, groupArg string) error {
	courseID, err := strconv.ParseInt(courseArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid course id %q", courseArg)
	}
	chatGroupID, err := strconv.ParseInt(groupArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat group id %q", groupArg)
	}

	window, err := client.Chat.OpenWindow(ctx, courseID, chatGroupID)
	if err != nil {
		return err
	}
	defer window.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	fmt.Println("tailing chat, ^C to quit")
	for {
		select {
		case <-window.Updates():
			if err := window.Err(); err != nil {
				return err
			}
			for _, msg := range window.Messages() {
				fmt.Printf("[%s] %s: %s\n",
					msg.CreatedAt.Format("15:04:05"), msg.User.Username, msg.Text)
			}
			fmt.Println("---")
		case user := <-window.Typing():
			fmt.Printf("%s is typing...\n", user.Username)
		case <-stop:
			return nil
		}
	}
}
