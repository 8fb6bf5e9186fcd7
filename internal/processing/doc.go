// Package processing реализует саги обработки лотов.
//
// Процессор получает снапшот лота из change feed и двигает лот и его
// активы по таблице переходов пакета transition, выполняя PATCH/POST
// вызовы к удалённым сервисам. Никакой из сервисов не владеет workflow
// целиком, поэтому процессор сам обнаруживает частичные отказы
// многошаговых обновлений и компенсирует их: откатывает уже
// завершённые шаги либо фиксирует лот в ledger как сломанный.
//
// Два варианта процессора:
//   - Basic — прямые ссылки лот→актив, захват активов и перевод лота в
//     active.salable;
//   - Loki — связывание через relatedProcesses, проекция полей актива
//     на лот и под-сага создания аукциона для статуса active.salable.
//
// Обработка строго последовательная: один лот за раз. Это осознанное
// свойство корректности — последовательность и есть единственный
// контроль конкурентности, не дающий двум сагам гоняться за одним
// активом.
package processing
