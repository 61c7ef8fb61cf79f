package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// SweepFields 提供清理任务的 run_id 与缓存目录字段，供 janitor 日志复用。
func SweepFields(runID, dir string) logrus.Fields {
	return logrus.Fields{
		"action": "sweep",
		"run_id": runID,
		"dir":    dir,
	}
}
