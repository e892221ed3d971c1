package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/iehaus/buildboard/internal/config"
	"github.com/iehaus/buildboard/internal/department"
	"github.com/iehaus/buildboard/internal/employee"
	employeerepo "github.com/iehaus/buildboard/internal/employee/repositoryimpl"
	"github.com/iehaus/buildboard/internal/eventbus"
	"github.com/iehaus/buildboard/internal/project"
	projectrepo "github.com/iehaus/buildboard/internal/project/repositoryimpl"
	"github.com/iehaus/buildboard/internal/pushsubscription"
	"github.com/iehaus/buildboard/internal/task"
	taskrepo "github.com/iehaus/buildboard/internal/task/repositoryimpl"
	"github.com/iehaus/buildboard/internal/taskcatalog"
	"github.com/iehaus/buildboard/pkg/cerr"
	"github.com/iehaus/buildboard/pkg/storage"
)

var (
	app = kingpin.New("buildboard-admin", "Operational tooling for the buildboard backend")

	seedCmd          = app.Command("seed-employees", "Load employee master data from a YAML file")
	seedFile         = seedCmd.Arg("file", "YAML file with an employees list").Required().ExistingFile()
	seedReplaceFlags = seedCmd.Flag("update", "Update employees that already exist").Bool()

	validateCmd = app.Command("validate-catalog", "Parse the task template catalog and report problems")

	regenCmd     = app.Command("regenerate", "Rebuild a project's task checklist from the catalog")
	regenID      = regenCmd.Arg("project-id", "Project to regenerate").Required().String()
	regenActor   = regenCmd.Flag("actor", "Employee id recorded in the audit trail").Required().String()
	regenConfirm = regenCmd.Flag("yes", "Confirm discarding manual task edits").Bool()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		fatalf("failed to load env: %v", err)
	}
	ctx := context.Background()

	switch command {
	case seedCmd.FullCommand():
		handleSeedEmployees(ctx, env, *seedFile, *seedReplaceFlags)
	case validateCmd.FullCommand():
		handleValidateCatalog(ctx, env)
	case regenCmd.FullCommand():
		handleRegenerate(ctx, env, *regenID, *regenActor, *regenConfirm)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func openDB(env *config.Env) *gorm.DB {
	if dir := filepath.Dir(env.DSN); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatalf("failed to create database directory %s: %v", dir, err)
		}
	}
	db, err := gorm.Open(sqlite.Open(env.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		fatalf("failed to open database %s: %v", env.DSN, err)
	}
	if err := db.AutoMigrate(
		&employee.Employee{},
		&project.Project{},
		&task.Task{},
		&pushsubscription.Subscription{},
	); err != nil {
		fatalf("failed to migrate database: %v", err)
	}
	return db
}

func openCatalog(ctx context.Context, env *config.Env) *taskcatalog.Catalog {
	catalogEnv := config.CatalogEnvFromEnv(env)
	var source storage.Source
	var err error
	switch catalogEnv.Type {
	case "s3":
		source, err = storage.NewS3Source(ctx, catalogEnv.S3Bucket, catalogEnv.S3Prefix, catalogEnv.S3Region)
	default:
		source, err = storage.NewLocalSource(catalogEnv.BaseDir)
	}
	if err != nil {
		fatalf("failed to open catalog source: %v", err)
	}
	catalog := taskcatalog.New(source)
	if err := catalog.Load(ctx); err != nil {
		fatalf("catalog failed to load: %v", err)
	}
	return catalog
}

type seedFileFormat struct {
	Employees []struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Role     string `yaml:"role"`
		Position string `yaml:"position"`
		Branch   string `yaml:"branch"`
	} `yaml:"employees"`
}

func handleSeedEmployees(ctx context.Context, env *config.Env, file string, update bool) {
	data, err := os.ReadFile(file)
	if err != nil {
		fatalf("failed to read %s: %v", file, err)
	}
	var seed seedFileFormat
	if err := yaml.Unmarshal(data, &seed); err != nil {
		fatalf("failed to parse %s: %v", file, err)
	}
	if len(seed.Employees) == 0 {
		fatalf("%s contains no employees", file)
	}

	repo := employeerepo.NewGormRepository(openDB(env))
	created, updated, skipped := 0, 0, 0
	for _, row := range seed.Employees {
		id := row.ID
		if id == "" {
			id = ulid.Make().String()
		}
		now := time.Now()
		e := &employee.Employee{
			ID:        id,
			Name:      row.Name,
			Role:      employee.Role(row.Role),
			Position:  department.Position(row.Position),
			Branch:    row.Branch,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := repo.Create(ctx, e)
		switch {
		case err == nil:
			created++
		case cerr.IsCode(err, cerr.AlreadyExists) && update:
			if err := repo.Update(ctx, e); err != nil {
				fatalf("failed to update employee %s: %v", id, err)
			}
			updated++
		case cerr.IsCode(err, cerr.AlreadyExists):
			skipped++
		default:
			fatalf("failed to create employee %s: %v", id, err)
		}
	}
	fmt.Printf("employees seeded: %d created, %d updated, %d skipped\n", created, updated, skipped)
}

func handleValidateCatalog(ctx context.Context, env *config.Env) {
	catalog := openCatalog(ctx, env)
	templates, err := catalog.List(ctx)
	if err != nil {
		fatalf("failed to list templates: %v", err)
	}
	scheduled := 0
	for _, t := range templates {
		if t.DaysFromAnchor != nil {
			scheduled++
		}
	}
	fmt.Printf("catalog OK: %d templates (%d with day offsets)\n", len(templates), scheduled)
}

func handleRegenerate(ctx context.Context, env *config.Env, projectID, actorID string, confirmed bool) {
	db := openDB(env)
	projectRepo := projectrepo.NewGormRepository(db)
	taskRepo := taskrepo.NewGormRepository(db)
	catalog := openCatalog(ctx, env)

	regenerator := task.NewRegenerator(projectRepo, catalog, taskRepo, eventbus.New(), nil)
	tasks, err := regenerator.Regenerate(ctx, projectID, actorID, confirmed)
	if err != nil {
		if cerr.IsCode(err, cerr.FailedPrecondition) && !confirmed {
			fatalf("refusing to regenerate without --yes: %v", err)
		}
		fatalf("regeneration failed: %v", err)
	}
	fmt.Printf("project %s regenerated: %d tasks\n", projectID, len(tasks))
}
