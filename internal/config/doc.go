// Package config собирает конфигурацию процессов Atlas из переменных окружения.
//
// Все значения имеют дефолты, достаточные для запуска в docker-compose
// окружении Atlas (collector alloy:4317, API на :3000, controller на :8081).
// Невалидные значения не роняют процесс: берётся дефолт, ошибка
// возвращается вызывающему для логирования.
package config
