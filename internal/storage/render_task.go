package storage

import (
	"errors"
	"reelsmith/internal/types"

	"gorm.io/gorm"
)

func SaveTask(task *types.RenderTask) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	// Upsert keyed by TaskId; Id stays the primary key.
	var existing types.RenderTask
	result := DB.Where("task_id = ?", task.TaskId).First(&existing)

	if result.Error == nil {
		task.Id = existing.Id // Preserve ID
		return DB.Save(task).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(task).Error
	}
	return result.Error
}

func GetTask(taskId string) (*types.RenderTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var task types.RenderTask
	if err := DB.Where("task_id = ?", taskId).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func GetTaskHistory(userId string, limit int) ([]types.RenderTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var tasks []types.RenderTask
	query := DB.Order("create_time desc").Limit(limit)
	if userId != "" {
		query = query.Where("user_id = ?", userId)
	}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func GetBatchTasks(batchId string) ([]types.RenderTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var tasks []types.RenderTask
	if err := DB.Where("batch_id = ?", batchId).Order("id asc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func DeleteTask(taskId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Where("task_id = ?", taskId).Delete(&types.RenderTask{}).Error
}

// MarkStaleTasks marks all running tasks as failed. Called on server startup
// to clean up jobs interrupted by a crash or restart.
func MarkStaleTasks() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&types.RenderTask{}).
		Where("status = ?", types.StatusRunning).
		Updates(map[string]interface{}{
			"status":      types.StatusFailed,
			"fail_reason": "Task interrupted by server restart",
			"status_msg":  "Interrupted",
		})
	return result.RowsAffected, result.Error
}
