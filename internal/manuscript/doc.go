// Package manuscript реализует синхронизацию манускриптов.
//
// Синхронизация — это запись в хранилище (сейчас MockStore с фиксированной
// задержкой вместо БД) и, если настроен брокер, публикация события
// manuscript.synced. Каждый шаг оборачивается в спан.
package manuscript
