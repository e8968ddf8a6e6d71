package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/nnptud/lms-backend/internal/config"
	"github.com/nnptud/lms-backend/internal/database"
	"github.com/nnptud/lms-backend/internal/logger"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/nnptud/lms-backend/internal/repository"
	"github.com/nnptud/lms-backend/internal/service"
)

// noopNotifier drops events; nobody is subscribed while seeding.
type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, string, model.EventName, any) {}

func main() {
	var (
		students int
		password string
	)
	flag.IntVar(&students, "students", 30, "Number of students to create and enroll")
	flag.StringVar(&password, "password", "password123", "Password for every seeded account")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	gradeRepo := repository.NewGradeRepository(pool)

	accessService := service.NewAccessService(classRepo, membershipRepo, assignmentRepo, submissionRepo)
	authService := service.NewAuthService(cfg, userRepo, log)
	userService := service.NewUserService(userRepo, authService, log)
	classService := service.NewClassService(classRepo, membershipRepo, assignmentRepo, userRepo, accessService, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, gradeRepo, accessService, log)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, membershipRepo, accessService, noopNotifier{}, log)

	// ensureUser creates an account or reuses the one already holding the email.
	ensureUser := func(name, email string, role model.Role) *model.User {
		u, err := userService.Create(ctx, model.CreateUserRequest{
			Name: name, Email: email, Password: password, Role: role,
		})
		if errors.Is(err, service.ErrEmailTaken) {
			u, err = userRepo.GetByEmail(ctx, email)
		}
		if err != nil {
			log.Fatal().Err(err).Str("email", email).Msg("Failed to ensure user")
		}
		return u
	}
	actorOf := func(u *model.User) *model.Actor {
		return &model.Actor{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
	}

	fmt.Printf("=== Seeding 1 teacher, 1 class, %d students ===\n", students)

	teacher := ensureUser("Demo Teacher", "teacher@example.com", model.RoleTeacher)
	teacherActor := actorOf(teacher)

	desc := "Seeded demo class"
	class, err := classService.Create(ctx, teacherActor, model.CreateClassRequest{
		Name:        "Demo Class " + time.Now().Format("2006-01-02"),
		Description: &desc,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create class")
	}
	fmt.Printf("Created class %q with join code %s\n", class.Name, class.Code)

	due := time.Now().Add(7 * 24 * time.Hour)
	assignment, err := assignmentService.Create(ctx, teacherActor, model.CreateAssignmentRequest{
		ClassID: class.ID,
		Title:   "Welcome essay",
		DueDate: &due,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create assignment")
	}

	successCount := 0
	for i := 0; i < students; i++ {
		student := ensureUser(
			fmt.Sprintf("Student %02d", i+1),
			fmt.Sprintf("student%02d@example.com", i+1),
			model.RoleStudent,
		)

		if _, err := classService.Enroll(ctx, teacherActor, class.ID, student.ID); err != nil {
			fmt.Printf("Error enrolling %s: %v\n", student.Email, err)
			continue
		}

		// Every other student hands in early so the teacher view has data.
		if i%2 == 0 {
			content := fmt.Sprintf("Hello from %s", student.Name)
			if _, err := submissionService.Submit(ctx, actorOf(student), model.SubmitRequest{
				AssignmentID: assignment.ID,
				Content:      &content,
			}); err != nil {
				fmt.Printf("Error submitting for %s: %v\n", student.Email, err)
			}
		}

		successCount++
		if (i+1)%10 == 0 {
			fmt.Printf("Enrolled %d students...\n", i+1)
		}
	}

	fmt.Printf("\nSeed completed! Enrolled %d/%d students.\n", successCount, students)
}
