// Package worker — цикл диспетчеризации лотов.
//
// Worker вычитывает change feed и раздаёт лоты процессорам по алиасу
// lotType. Перед диспетчеризацией лот проходит три фильтра:
//   - незарегистрированный lotType — предупреждение и пропуск;
//   - метка в advisory-кэше — повторная доставка, пропуск;
//   - неразрешённая запись в ledger — правило ревизий: та же ревизия
//     означает, что удалённое состояние не менялось с момента поломки,
//     лот пропускается; другая ревизия снимает запись, и лот
//     обрабатывается заново.
//
// Обработка строго последовательная и однопоточная — см. пакет
// processing. Отмена контекста проверяется раз за полный цикл дрена,
// лот в середине саги не прерывается.
package worker
