// Package controller реализует Shield control plane (atlas-controller).
//
// Controller публикует в Prometheus оценку здоровья Shield и число активных
// проверок по типам. Значения обновляются cron-задачей (по умолчанию каждые
// 10 секунд) из Source; пока реального API Shield нет, используется
// SimulatedSource.
//
// Если настроен RabbitMQ, controller также считает события manuscript.synced
// от atlas-api.
package controller
