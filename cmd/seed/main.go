package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jmoreau/taskhive-backend/config"
	"github.com/jmoreau/taskhive-backend/internal/app/model"
	"github.com/jmoreau/taskhive-backend/internal/app/repository"
	"github.com/jmoreau/taskhive-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Imports projects and tasks from an XLSX workbook into one user's
// workspace. Expected columns, first row being the header:
//
//	project_title | project_description | task_title | task_description | status | due_date
//
// Rows sharing a project_title land in the same project. Rows with an empty
// task_title create the project only.
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path> <owner_email>")
	}

	filePath := os.Args[1]
	ownerEmail := os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db.GetDB())
	projectRepo := repository.NewProjectRepository(db.GetDB())
	taskRepo := repository.NewTaskRepository(db.GetDB())

	owner, err := userRepo.FindByEmail(ownerEmail)
	if err != nil {
		log.Fatal("Owner account not found:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readRows(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Rows to import: %d\n", len(rows))
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	projects := make(map[string]*model.Project)
	importedProjects := 0
	importedTasks := 0
	skipped := 0

	for _, row := range rows {
		projectTitle := strings.TrimSpace(row.projectTitle)
		if projectTitle == "" {
			skipped++
			continue
		}

		project, ok := projects[projectTitle]
		if !ok {
			project = &model.Project{
				Title:       projectTitle,
				Description: strings.TrimSpace(row.projectDescription),
				OwnerID:     owner.ID,
			}
			if err := projectRepo.Create(project); err != nil {
				log.Fatal("Failed to create project:", err)
			}
			projects[projectTitle] = project
			importedProjects++
		}

		taskTitle := strings.TrimSpace(row.taskTitle)
		if taskTitle == "" {
			continue
		}

		status := model.TaskStatus(strings.TrimSpace(row.status))
		if status == "" {
			status = model.TaskStatusTodo
		}
		if !model.ValidTaskStatus(status) {
			fmt.Printf("Skipping task %q: unknown status %q\n", taskTitle, status)
			skipped++
			continue
		}

		task := &model.Task{
			Title:       taskTitle,
			Description: strings.TrimSpace(row.taskDescription),
			Status:      status,
			DueDate:     parseDueDate(row.dueDate),
			ProjectID:   project.ID,
		}
		if err := taskRepo.Create(task); err != nil {
			log.Fatal("Failed to create task:", err)
		}
		importedTasks++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Projects: %d, tasks: %d, skipped rows: %d\n", importedProjects, importedTasks, skipped)
}

type seedRow struct {
	projectTitle       string
	projectDescription string
	taskTitle          string
	taskDescription    string
	status             string
	dueDate            string
}

func readRows(filePath string) ([]seedRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var result []seedRow
	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		result = append(result, seedRow{
			projectTitle:       cell(row, 0),
			projectDescription: cell(row, 1),
			taskTitle:          cell(row, 2),
			taskDescription:    cell(row, 3),
			status:             cell(row, 4),
			dueDate:            cell(row, 5),
		})
	}

	return result, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseDueDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range []string{"2006-01-02", "01/02/2006", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	fmt.Printf("Ignoring unparseable due date %q\n", s)
	return nil
}
