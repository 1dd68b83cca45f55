// Package holder содержит одноместные контейнеры для состояния задачи.
//
// Holder связывает шаг, который производит значение, с шагами, которые его
// читают, без прямого вызова между ними. Каждый holder создаётся заново для
// каждой задачи и выбрасывается после её завершения.
//
// Holder не синхронизирован: шаги одной задачи выполняются строго
// последовательно, конкурентных писателей нет.
package holder
